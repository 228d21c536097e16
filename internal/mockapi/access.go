// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/pdiddy/research-admin/pkg/types"
)

// createAccessRequest files a full-content access request for a result.
// Only one request per result may be pending, and a result that already
// grants full access cannot be requested again.
func (e *Engine) createAccessRequest(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = r.decode(&body)
	reason := strings.TrimSpace(body.Reason)

	switch {
	case reason == "":
		return fail(http.StatusBadRequest, "a reason is required")
	case res.PermissionStatus == types.PermissionFull || res.AccessRequestStatus == types.AccessApproved:
		return fail(http.StatusBadRequest, "full access is already granted")
	case res.AccessRequestStatus == types.AccessPending:
		return fail(http.StatusBadRequest, "a request is already awaiting review")
	case !res.CanRequestAccess && res.AccessRequestStatus != types.AccessRejected:
		return fail(http.StatusBadRequest, "access cannot be requested for this result")
	}

	created := e.stamp()
	rec := &types.AccessRequest{
		ID:          e.store.nextID("req"),
		ResultID:    res.ID,
		ResultTitle: res.Title,
		ResultType:  res.Type,
		ProjectName: res.ProjectName,
		Visibility:  res.Visibility,
		UserID:      r.user.ID,
		UserName:    r.user.Name,
		Status:      types.AccessPending,
		Reason:      reason,
		CreatedAt:   created,
	}
	e.store.AccessRequests = append([]*types.AccessRequest{rec}, e.store.AccessRequests...)

	res.AccessRequestStatus = types.AccessPending
	if res.PermissionStatus == "" {
		res.PermissionStatus = types.PermissionSummary
	}
	res.LastRequestAt = created
	res.RejectedReason = ""
	res.CanRequestAccess = false
	return success(rec, "request submitted, awaiting review")
}

// accessRequestView carries the current status of the requested result.
type accessRequestView struct {
	types.AccessRequest
	ResultStatus string `json:"resultStatus,omitempty"`
}

func (e *Engine) listAccessRequests(r *request) Reply {
	keyword := queryString(r.query, "keyword")
	statuses := queryList(r.query, "status")

	list := []accessRequestView{}
	for _, rec := range e.store.AccessRequests {
		v := accessRequestView{AccessRequest: *rec}
		if res, _ := e.store.result(rec.ResultID); res != nil {
			if v.ResultTitle == "" {
				v.ResultTitle = res.Title
			}
			if v.ResultType == "" {
				v.ResultType = res.Type
			}
			if v.ProjectName == "" {
				v.ProjectName = res.ProjectName
			}
			if v.Visibility == "" {
				v.Visibility = res.Visibility
			}
			v.ResultStatus = res.Status
		}
		if v.ResultTitle == "" {
			v.ResultTitle = rec.ResultID
		}
		if keyword != "" && !strings.Contains(v.ResultTitle, keyword) && !strings.Contains(v.UserName, keyword) &&
			!strings.Contains(v.Reason, keyword) {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, v.Status) {
			continue
		}
		list = append(list, v)
	}
	return success(paginate(list, r.query), "")
}

func (e *Engine) reviewAccessRequest(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	var rec *types.AccessRequest
	for _, a := range e.store.AccessRequests {
		if a.ID == r.param(0) {
			rec = a
			break
		}
	}
	if rec == nil {
		return fail(http.StatusNotFound, "access request not found")
	}
	var body struct {
		Action  string `json:"action"`
		Comment string `json:"comment"`
	}
	_ = r.decode(&body)
	if body.Action != "approve" && body.Action != "reject" {
		return fail(http.StatusBadRequest, "action must be approve or reject")
	}

	reviewed := e.stamp()
	rec.Status = types.AccessApproved
	if body.Action == "reject" {
		rec.Status = types.AccessRejected
	}
	rec.ReviewedAt = reviewed
	rec.Reviewer = r.user.Name
	rec.Comment = body.Comment

	if res, _ := e.store.result(rec.ResultID); res != nil {
		rec.ResultTitle = res.Title
		rec.ResultType = res.Type
		rec.ProjectName = res.ProjectName
		rec.Visibility = res.Visibility
		res.LastRequestAt = reviewed
		if body.Action == "approve" {
			res.PermissionStatus = types.PermissionFull
			res.AccessRequestStatus = types.AccessApproved
			res.CanRequestAccess = false
			res.RejectedReason = ""
		} else {
			if res.PermissionStatus == "" {
				res.PermissionStatus = types.PermissionSummary
			}
			res.AccessRequestStatus = types.AccessRejected
			res.CanRequestAccess = true
			res.RejectedReason = rec.Comment
			if res.RejectedReason == "" {
				res.RejectedReason = "The administrator rejected the request."
			}
		}
	}

	if body.Action == "approve" {
		return success(rec, "request approved")
	}
	return success(rec, "request rejected")
}
