// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package models

import "time"

// Post is a short content item authored by exactly one user. Posts are
// immutable after creation and are deleted together with their author.
type Post struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
