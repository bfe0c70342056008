// SPDX-License-Identifier: Apache-2.0

package search

import "github.com/google/uuid"

type Result struct {
	Items []Item
	Total int
}

type Item struct {
	RecordID uuid.UUID
	Score    float64
}

func (r *Result) RecordIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, i := range r.Items {
		ids = append(ids, i.RecordID)
	}
	return ids
}

func EmptyResult() *Result {
	return &Result{Items: []Item{}}
}
