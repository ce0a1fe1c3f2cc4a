// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import "github.com/relabs-tech/compass/internal/heading"

// latestQueue holds at most one pending snapshot. A push replaces whatever
// was not consumed yet, so slow outputs always see the newest heading and
// never hold up the pipeline.
type latestQueue struct {
	ch chan heading.Snapshot
}

func newLatestQueue() *latestQueue {
	return &latestQueue{ch: make(chan heading.Snapshot, 1)}
}

func (q *latestQueue) push(s heading.Snapshot) {
	for {
		select {
		case q.ch <- s:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

func (q *latestQueue) C() <-chan heading.Snapshot {
	return q.ch
}
