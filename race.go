// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package iqueue

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent Send/Recv stress tests whose
// lock-free cell handoff is synchronized through atomics the race
// detector cannot see, producing false positives.
const RaceEnabled = true
