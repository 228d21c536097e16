// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/research-admin/pkg/types"
)

const trendYears = 5

func (e *Engine) listProjects(r *request) Reply {
	keyword := queryString(r.query, "keyword", "keywords")
	list := []types.Project{}
	for _, p := range e.store.Projects {
		if keyword == "" || strings.Contains(p.Name, keyword) || strings.Contains(p.Code, keyword) ||
			strings.Contains(p.Description, keyword) {
			list = append(list, p)
		}
	}
	return success(list, "")
}

func (e *Engine) getProject(r *request) Reply {
	p, ok := e.store.findProject(r.param(0))
	if !ok {
		return fail(http.StatusNotFound, "project not found")
	}
	return success(p, "")
}

func (e *Engine) createProject(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	var p types.Project
	if err := r.decode(&p); err != nil {
		return fail(http.StatusBadRequest, "malformed project")
	}
	p.ID = e.store.nextID("p")
	e.store.Projects = append([]types.Project{p}, e.store.Projects...)
	return success(p, "project created")
}

type yearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

type statistics struct {
	TotalResults     int          `json:"totalResults"`
	PaperCount       int          `json:"paperCount"`
	PatentCount      int          `json:"patentCount"`
	MonthlyNew       int          `json:"monthlyNew"`
	TypeDistribution []namedValue `json:"typeDistribution"`
	YearlyTrend      []yearCount  `json:"yearlyTrend"`
}

// buildStatistics summarizes src. Type buckets keep first-seen order.
func (e *Engine) buildStatistics(src []*types.Result) statistics {
	today := e.today()
	month := today[:7]
	st := statistics{TotalResults: len(src), TypeDistribution: []namedValue{}}

	counts := map[string]int{}
	var order []string
	for _, r := range src {
		switch r.Type {
		case "paper":
			st.PaperCount++
		case "patent":
			st.PatentCount++
		}
		if strings.HasPrefix(r.CreatedAt, month) {
			st.MonthlyNew++
		}
		key := r.Type
		if key == "" {
			key = r.TypeID
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	for _, key := range order {
		st.TypeDistribution = append(st.TypeDistribution, namedValue{Name: e.typeName(key), Value: counts[key]})
	}

	for _, year := range e.lastYears(trendYears) {
		n := 0
		for _, r := range src {
			if strconv.Itoa(r.Year) == year {
				n++
			}
		}
		st.YearlyTrend = append(st.YearlyTrend, yearCount{Year: year, Count: n})
	}
	return st
}

func (e *Engine) typeName(key string) string {
	for _, t := range e.store.ResultTypes {
		if t.ID == key || t.Code == key {
			return t.Name
		}
	}
	return key
}

// lastYears returns the n calendar years ending with the current one,
// oldest first.
func (e *Engine) lastYears(n int) []string {
	current := e.now().Year()
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, strconv.Itoa(current-i))
	}
	return out
}

func (e *Engine) statistics(*request) Reply {
	return success(e.buildStatistics(e.store.Results), "")
}

func (e *Engine) myStatistics(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	return success(e.buildStatistics(e.mine(r.user)), "")
}

func (e *Engine) distribution(r *request) Reply {
	dimension := queryString(r.query, "dimension")
	if dimension == "" {
		dimension = "type"
	}
	items := e.store.Analytics.Distribution[dimension]
	if items == nil {
		items = []namedValue{}
	}
	level := e.store.Analytics.Distribution["indexLevel"]
	if level == nil {
		level = []namedValue{}
	}
	return success(map[string]any{
		"dimension":       dimension,
		"items":           items,
		"indexLevelItems": level,
	}, "")
}

// stackedTrend answers a five-year series per dimension; range 3y keeps
// only the last three points of every series.
func (e *Engine) stackedTrend(r *request) Reply {
	dimension := queryString(r.query, "dimension")
	if dimension == "" {
		dimension = "type"
	}
	span := queryString(r.query, "range")
	if span == "" {
		span = "5y"
	}
	t, ok := e.store.Analytics.StackedTrend[dimension]
	if !ok {
		t = e.store.Analytics.StackedTrend["type"]
	}

	timeline := e.lastYears(trendYears)
	stacks := make([]trendStack, 0, len(t.Stacks))
	for _, s := range t.Stacks {
		stacks = append(stacks, trendStack{Key: s.Key, Name: s.Name, Data: append([]int{}, s.Data...)})
	}
	citations := append([]int{}, t.Citations...)

	if span == "3y" && len(timeline) > 3 {
		start := len(timeline) - 3
		timeline = timeline[start:]
		for i := range stacks {
			stacks[i].Data = tail(stacks[i].Data, start)
		}
		citations = tail(citations, start)
	}
	return success(map[string]any{
		"dimension": dimension,
		"range":     span,
		"timeline":  timeline,
		"stacks":    stacks,
		"citations": citations,
	}, "")
}

func tail(s []int, start int) []int {
	if start >= len(s) {
		return []int{}
	}
	return s[start:]
}

func (e *Engine) keywords(r *request) Reply {
	span := queryString(r.query, "range")
	if span == "" {
		span = "1y"
	}
	g := e.store.Analytics.KeywordGraph
	nodes, links := g.Nodes, g.Links
	if nodes == nil {
		nodes = []graphNode{}
	}
	if links == nil {
		links = []graphLink{}
	}
	return success(map[string]any{"range": span, "nodes": nodes, "links": links}, "")
}
