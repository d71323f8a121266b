/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package block

import (
	"context"

	"github.com/friendsincode/telestar/internal/editor"
	"github.com/friendsincode/telestar/internal/models"
	"github.com/friendsincode/telestar/internal/schedule"
)

// AutoReviewer accepts every default: the given hour, all programs in discovery
// order, the detected breaks and the nearest-to-midpoint mid bumper.
type AutoReviewer struct {
	Hour int
}

func (a AutoReviewer) BlockHour() int { return a.Hour }

func (a AutoReviewer) SelectPrograms(programs []models.Program) []models.Program {
	return programs
}

func (a AutoReviewer) ReviewSchedule(ctx context.Context, b *schedule.Builder) error {
	return ctx.Err()
}

func (a AutoReviewer) ReviewBreaks(ctx context.Context, ed *editor.Editor) (editor.Result, error) {
	for ed.State() != editor.Done {
		if err := ed.Approve(); err != nil {
			return editor.Result{}, err
		}
	}
	return ed.Result()
}
