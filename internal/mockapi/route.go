// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"net/http"
	"regexp"
)

type handler func(e *Engine, r *request) Reply

type route struct {
	method string
	match  func(path string) ([]string, bool)
	name   string
	handle handler
	// public routes ignore the bearer token entirely.
	public bool
}

func exact(p string) func(string) ([]string, bool) {
	return func(path string) ([]string, bool) { return nil, path == p }
}

func pattern(expr string) func(string) ([]string, bool) {
	re := regexp.MustCompile("^" + expr + "$")
	return func(path string) ([]string, bool) {
		m := re.FindStringSubmatch(path)
		if m == nil {
			return nil, false
		}
		return m[1:], true
	}
}

// routeTable lists every route in match priority. Fixed paths precede the
// parameterized routes they would otherwise collide with.
func (e *Engine) routeTable() []route {
	const (
		get  = http.MethodGet
		post = http.MethodPost
		put  = http.MethodPut
		del  = http.MethodDelete
		id   = `([^/]+)`
	)
	return []route{
		{post, exact("/auth/login"), "auth.login", (*Engine).login, true},
		{post, exact("/auth/refresh"), "auth.refresh", (*Engine).refresh, true},
		{post, exact("/auth/verify"), "auth.verify", (*Engine).verify, true},
		{post, exact("/auth/logout"), "auth.logout", (*Engine).logout, true},
		{get, exact("/auth/current"), "auth.current", (*Engine).current, false},

		{get, exact("/projects"), "projects.list", (*Engine).listProjects, false},
		{get, pattern(`/projects/` + id), "projects.get", (*Engine).getProject, false},
		{post, exact("/projects"), "projects.create", (*Engine).createProject, false},

		{get, exact("/results/statistics"), "results.statistics", (*Engine).statistics, false},
		{get, exact("/results/my-statistics"), "results.my_statistics", (*Engine).myStatistics, false},
		{get, exact("/results/advanced-distribution"), "results.distribution", (*Engine).distribution, false},
		{get, exact("/results/stacked-trend"), "results.stacked_trend", (*Engine).stackedTrend, false},
		{get, exact("/results/keywords"), "results.keywords", (*Engine).keywords, false},

		{get, exact("/result-types"), "result_types.list", (*Engine).listResultTypes, false},

		{get, exact("/achievement-types"), "achievement_types.list", (*Engine).listAchievementTypes, false},
		{post, exact("/achievement-types"), "achievement_types.create", (*Engine).createAchievementType, false},
		{put, pattern(`/achievement-types/` + id), "achievement_types.update", (*Engine).updateAchievementType, false},
		{del, pattern(`/achievement-types/` + id), "achievement_types.delete", (*Engine).deleteAchievementType, false},
		{get, exact("/achievement-field-defs"), "field_defs.list", (*Engine).listFieldDefs, false},
		{post, exact("/achievement-field-defs"), "field_defs.create", (*Engine).createFieldDef, false},
		{put, pattern(`/achievement-field-defs/` + id), "field_defs.update", (*Engine).updateFieldDef, false},
		{del, pattern(`/achievement-field-defs/` + id), "field_defs.delete", (*Engine).deleteFieldDef, false},

		{get, pattern(`/result-types/` + id), "result_types.get", (*Engine).getResultType, false},

		{get, exact("/results"), "results.list", (*Engine).listResults, false},
		{get, exact("/results/my"), "results.my", (*Engine).myResults, false},
		{get, exact("/results/review-backlog"), "results.review_backlog", (*Engine).reviewBacklog, false},
		{get, exact("/results/auto-fill"), "results.auto_fill", (*Engine).autoFill, false},
		{post, exact("/results/auto-fill"), "results.auto_fill", (*Engine).autoFill, false},
		{get, exact("/results/access-requests"), "access_requests.list", (*Engine).listAccessRequests, false},
		{post, pattern(`/results/access-requests/` + id + `/review`), "access_requests.review", (*Engine).reviewAccessRequest, false},
		{get, pattern(`/results/` + id), "results.get", (*Engine).getResult, false},
		{post, pattern(`/results/` + id + `/access-requests`), "access_requests.create", (*Engine).createAccessRequest, false},
		{post, exact("/results"), "results.create", (*Engine).createResult, false},
		{post, exact("/results/draft"), "results.draft", (*Engine).saveDraft, false},
		{put, pattern(`/results/` + id), "results.update", (*Engine).updateResult, false},
		{del, pattern(`/results/` + id), "results.delete", (*Engine).deleteResult, false},
		{post, pattern(`/results/` + id + `/submit`), "results.submit", (*Engine).submitResult, false},
		{post, pattern(`/results/` + id + `/assign-reviewers`), "results.assign_reviewers", (*Engine).assignReviewers, false},
		{post, pattern(`/results/` + id + `/review`), "results.review", (*Engine).reviewResult, false},
		{post, pattern(`/results/` + id + `/request-changes`), "results.request_changes", (*Engine).requestChanges, false},
		{post, pattern(`/results/` + id + `/format-check`), "results.format_check", (*Engine).formatCheck, false},
		{post, pattern(`/results/` + id + `/format-reject`), "results.format_reject", (*Engine).formatReject, false},

		{get, exact("/demand"), "demands.list", (*Engine).listDemands, false},
		{get, pattern(`/demand/` + id), "demands.get", (*Engine).getDemand, false},
		{post, pattern(`/demand/` + id + `/rematch`), "demands.rematch", (*Engine).rematchDemand, false},

		{get, exact("/system/crawler-sources"), "crawler.list", (*Engine).listCrawlerSources, false},
		{post, exact("/system/crawler-sources"), "crawler.create", (*Engine).createCrawlerSource, false},
		{post, pattern(`/system/crawler-sources/` + id + `/test`), "crawler.test", (*Engine).testCrawlerSource, false},
		{put, pattern(`/system/crawler-sources/` + id), "crawler.update", (*Engine).updateCrawlerSource, false},
		{del, pattern(`/system/crawler-sources/` + id), "crawler.delete", (*Engine).deleteCrawlerSource, false},
		{get, exact("/system/crawler-settings"), "crawler.settings", (*Engine).crawlerSettings, false},
		{put, exact("/system/crawler-settings"), "crawler.settings_update", (*Engine).updateCrawlerSettings, false},

		{post, exact("/upload"), "upload", (*Engine).upload, false},

		{get, exact("/interim-results/stats"), "interim.stats", (*Engine).interimStats, false},
		{get, exact("/interim-results/export"), "interim.export", (*Engine).interimExport, false},
		{get, exact("/interim-results"), "interim.list", (*Engine).listInterim, false},
		{get, pattern(`/interim-results/` + id), "interim.get", (*Engine).getInterim, false},
		{post, exact("/interim-results/sync"), "interim.sync", (*Engine).syncInterim, false},
		{post, exact("/interim-results/batch-download"), "interim.batch_download", (*Engine).interimBatchDownload, false},
	}
}
