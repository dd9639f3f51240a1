// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package models

import "time"

// Relationship is a directed follow edge: follower follows followed.
// "A follows B" does not imply "B follows A".
type Relationship struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FollowedID int64     `db:"followed_id" json:"followed_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
