package httpapi

import (
	"github.com/google/uuid"

	"github.com/trustify-project/catalogd/internal/group"
)

type createGroupRequest struct {
	Parent *uuid.UUID        `json:"parent,omitempty"`
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
}

type updateGroupRequest struct {
	Parent *uuid.UUID        `json:"parent,omitempty"`
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
}

type groupResponse struct {
	ID       uuid.UUID         `json:"id"`
	Parent   *uuid.UUID        `json:"parent,omitempty"`
	Name     string            `json:"name"`
	Labels   map[string]string `json:"labels"`
	Revision int32             `json:"revision"`

	Children []uuid.UUID `json:"children,omitempty"`
	Totals   int64       `json:"totals,omitempty"`
	Parents  []uuid.UUID `json:"parents,omitempty"`
}

type listGroupsResponse struct {
	Total uint64          `json:"total"`
	Items []groupResponse `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toGroupResponse(v group.View) groupResponse {
	return groupResponse{
		ID:       v.Group.ID,
		Parent:   v.Group.Parent,
		Name:     v.Group.Name,
		Labels:   v.Group.Labels,
		Revision: v.Group.Revision,
		Children: v.Children,
		Totals:   v.Totals,
		Parents:  v.Parents,
	}
}

func toListResponse(r group.ListResult) listGroupsResponse {
	items := make([]groupResponse, 0, len(r.Items))
	for _, v := range r.Items {
		items = append(items, toGroupResponse(v))
	}
	return listGroupsResponse{Total: r.Total, Items: items}
}
