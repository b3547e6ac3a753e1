package board

import "encoding/json"

type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type GraphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

type ProjectNode struct {
	ID string `json:"id"`
}

type OrgProjectResponse struct {
	Organization struct {
		ProjectV2 *ProjectNode `json:"projectV2"`
	} `json:"organization"`
}

type UserProjectResponse struct {
	User struct {
		ProjectV2 *ProjectNode `json:"projectV2"`
	} `json:"user"`
}

type OptionNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FieldNode struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	DataType string       `json:"dataType"`
	Options  []OptionNode `json:"options"`
}

type SchemaResponse struct {
	Node struct {
		Fields struct {
			Nodes []FieldNode `json:"nodes"`
		} `json:"fields"`
	} `json:"node"`
}

type FieldRef struct {
	Name string `json:"name"`
}

// One entry of the field value union. The remote schema returns exactly one
// populated member per entry; the rest stay null.
type FieldValueNode struct {
	Text   *string   `json:"text"`
	Number *float64  `json:"number"`
	Date   *string   `json:"date"`
	Name   *string   `json:"name"`
	Field  *FieldRef `json:"field"`
}

type ItemContent struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type ItemNode struct {
	ID          string      `json:"id"`
	IsArchived  bool        `json:"isArchived"`
	Content     ItemContent `json:"content"`
	FieldValues struct {
		Nodes []FieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
}

type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type ItemsResponse struct {
	Node struct {
		Items struct {
			PageInfo PageInfo   `json:"pageInfo"`
			Nodes    []ItemNode `json:"nodes"`
		} `json:"items"`
	} `json:"node"`
}

type AddItemResponse struct {
	AddProjectV2ItemByID struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	} `json:"addProjectV2ItemById"`
}
