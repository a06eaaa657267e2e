/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package clock sets the system realtime clock.

Two methods are supported:
  - settime: settimeofday(2) with the absolute target time. Works on every unix.
  - step: clock_adjtime(2) with ADJ_SETOFFSET, stepping the clock by the distance
    between now and the target. Linux only.

Both need CAP_SYS_TIME (or root). Any failure is reported as ErrCommitFailed
wrapping the OS error.
*/
package clock
