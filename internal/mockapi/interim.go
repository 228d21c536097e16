// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"net/http"
	"strings"

	"github.com/pdiddy/research-admin/pkg/types"
)

type interimStats struct {
	TotalProjects  int            `json:"totalProjects"`
	TotalResults   int            `json:"totalResults"`
	ByType         map[string]int `json:"byType"`
	ByYear         map[string]int `json:"byYear"`
	RecentSyncTime string         `json:"recentSyncTime,omitempty"`
}

func (e *Engine) interimStats(*request) Reply {
	st := interimStats{ByType: map[string]int{}, ByYear: map[string]int{}}
	projects := map[string]struct{}{}
	for _, ir := range e.store.InterimResults {
		projects[ir.ProjectID] = struct{}{}
		st.TotalResults++
		key := ir.TypeLabel
		if key == "" {
			key = ir.Type
		}
		st.ByType[key]++
		if len(ir.SubmittedAt) >= 4 {
			st.ByYear[ir.SubmittedAt[:4]]++
		}
		if ir.SyncedAt > st.RecentSyncTime {
			st.RecentSyncTime = ir.SyncedAt
		}
	}
	st.TotalProjects = len(projects)
	return success(st, "")
}

func (e *Engine) listInterim(r *request) Reply {
	projectID := queryString(r.query, "projectId")
	typ := queryString(r.query, "type")
	year := queryString(r.query, "year")
	keyword := queryString(r.query, "keyword")

	var list []*types.InterimResult
	for _, ir := range e.store.InterimResults {
		if projectID != "" && ir.ProjectID != projectID {
			continue
		}
		if typ != "" && ir.Type != typ {
			continue
		}
		if year != "" && !strings.HasPrefix(ir.SubmittedAt, year) {
			continue
		}
		if keyword != "" && !strings.Contains(ir.Name, keyword) && !strings.Contains(ir.ProjectName, keyword) &&
			!strings.Contains(ir.Description, keyword) && !strings.Contains(ir.Submitter, keyword) {
			continue
		}
		list = append(list, ir)
	}
	return success(paginate(list, r.query), "")
}

func (e *Engine) getInterim(r *request) Reply {
	for _, ir := range e.store.InterimResults {
		if ir.ID == r.param(0) {
			return success(ir, "")
		}
	}
	return fail(http.StatusNotFound, "interim result not found")
}

// syncInterim pretends to pull from the process system. A project-scoped
// sync reports the items already held for that project.
func (e *Engine) syncInterim(r *request) Reply {
	var body struct {
		ProjectID string `json:"projectId"`
	}
	_ = r.decode(&body)
	count := len(e.store.InterimResults)
	if body.ProjectID != "" {
		count = 0
		for _, ir := range e.store.InterimResults {
			if ir.ProjectID == body.ProjectID {
				count++
			}
		}
	}
	return success(map[string]any{"syncCount": count, "syncTime": e.stamp()}, "sync complete")
}

func (e *Engine) interimBatchDownload(*request) Reply {
	return success(map[string]string{"message": "batch download requires the live backend"}, "")
}

func (e *Engine) interimExport(*request) Reply {
	return success(map[string]string{"message": "export requires the live backend"}, "")
}
