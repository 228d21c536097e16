// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	_ "embed"
	"fmt"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-admin/pkg/types"
)

//go:embed seed.yaml
var defaultSeed []byte

// account is a seeded user. Password never leaves the engine.
type account struct {
	types.UserProfile `yaml:",inline"`
	Password          string `yaml:"password"`
}

type namedValue struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type trendStack struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
	Data []int  `json:"data" yaml:"data"`
}

type trend struct {
	Stacks    []trendStack `json:"stacks" yaml:"stacks"`
	Citations []int        `json:"citations" yaml:"citations"`
}

type graphNode struct {
	Name     string `json:"name" yaml:"name"`
	Value    int    `json:"value" yaml:"value"`
	Category string `json:"category" yaml:"category"`
}

type graphLink struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Value  int    `json:"value" yaml:"value"`
}

type analytics struct {
	Distribution map[string][]namedValue `yaml:"distribution"`
	StackedTrend map[string]trend        `yaml:"stackedTrend"`
	KeywordGraph struct {
		Nodes []graphNode `yaml:"nodes"`
		Links []graphLink `yaml:"links"`
	} `yaml:"keywordGraph"`
}

type upload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// seed is the YAML document layout.
type seed struct {
	Users           []account              `yaml:"users"`
	ResultTypes     []*types.ResultType    `yaml:"resultTypes"`
	Projects        []types.Project        `yaml:"projects"`
	Results         []*types.Result        `yaml:"results"`
	AccessRequests  []*types.AccessRequest `yaml:"accessRequests"`
	Demands         []*types.Demand        `yaml:"demands"`
	CrawlerSources  []*types.CrawlerSource `yaml:"crawlerSources"`
	CrawlerSettings types.CrawlerSettings  `yaml:"crawlerSettings"`
	InterimResults  []*types.InterimResult `yaml:"interimResults"`
	Analytics       analytics              `yaml:"analytics"`
}

// store holds every mock collection. Callers hold Engine.mu.
type store struct {
	seed

	achievementTypes []*types.AchievementType
	fieldDefs        []*types.FieldDef
	uploads          []upload
	seq              int
}

func loadStore(data []byte, today string) (*store, error) {
	if len(data) == 0 {
		data = defaultSeed
	}
	var sd seed
	if err := yaml.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parsing mock seed: %w", err)
	}

	s := &store{seed: sd, seq: 1000}
	for _, r := range s.Results {
		normalizeResult(r)
		s.attachProject(r, nil)
	}
	for _, d := range s.Demands {
		if d.Matches == nil {
			d.Matches = []types.DemandMatch{}
		}
	}
	for _, c := range s.CrawlerSources {
		if c.Credentials == nil {
			c.Credentials = map[string]string{}
		}
	}
	s.deriveStrapi(today)
	return s, nil
}

// deriveStrapi builds the Strapi-dialect collections from the result types.
func (s *store) deriveStrapi(today string) {
	for i, t := range s.ResultTypes {
		isDelete := 0
		if !t.Enabled {
			isDelete = 1
		}
		s.achievementTypes = append(s.achievementTypes, &types.AchievementType{
			ID:          i + 1,
			DocumentID:  t.ID,
			TypeName:    t.Name,
			TypeCode:    t.Code,
			Description: t.Description,
			IsDelete:    isDelete,
			CreatedAt:   today,
			UpdatedAt:   today,
			PublishedAt: today,
		})
		for j, f := range t.Fields {
			fid := f.ID
			if fid == "" {
				fid = strconv.Itoa(j + 1)
			}
			required := 0
			if f.Required {
				required = 1
			}
			s.fieldDefs = append(s.fieldDefs, &types.FieldDef{
				ID:                len(s.fieldDefs) + 1,
				DocumentID:        t.ID + "-field-" + fid,
				AchievementTypeID: t.ID,
				FieldCode:         f.Name,
				FieldName:         f.Label,
				FieldType:         upper(f.Type, "TEXT"),
				IsRequired:        required,
				CreatedAt:         today,
				UpdatedAt:         today,
				PublishedAt:       today,
			})
		}
	}
}

// nextID returns a fresh id with prefix.
func (s *store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func normalizeResult(r *types.Result) {
	if r.Authors == nil {
		r.Authors = []string{}
	}
	if r.AssignedReviewers == nil {
		r.AssignedReviewers = []string{}
	}
	if r.Attachments == nil {
		r.Attachments = []types.Attachment{}
	}
	if r.ReviewHistory == nil {
		r.ReviewHistory = []types.ReviewEntry{}
	}
}

// findProject resolves a project by id or code. Missing references are
// not an error.
func (s *store) findProject(ref string) (types.Project, bool) {
	if ref == "" {
		return types.Project{}, false
	}
	for _, p := range s.Projects {
		if p.ID == ref || p.Code == ref {
			return p, true
		}
	}
	return types.Project{}, false
}

// attachProject fills the embedded project fields on r from its project
// reference, keeping explicit values and falling back to prev.
func (s *store) attachProject(r *types.Result, prev *types.Result) {
	if r.ProjectID == "" && prev != nil {
		r.ProjectID = prev.ProjectID
	}
	p, ok := s.findProject(r.ProjectID)
	if r.ProjectName == "" {
		switch {
		case ok:
			r.ProjectName = p.Name
		case prev != nil:
			r.ProjectName = prev.ProjectName
		}
	}
	if r.ProjectCode == "" {
		switch {
		case ok:
			r.ProjectCode = p.Code
		case prev != nil:
			r.ProjectCode = prev.ProjectCode
		}
	}
}

func (s *store) result(id string) (*types.Result, int) {
	for i, r := range s.Results {
		if r.ID == id {
			return r, i
		}
	}
	return nil, -1
}

func (s *store) account(username, password string) *account {
	for i := range s.Users {
		u := &s.Users[i]
		if u.Username == username && u.Password == password {
			return u
		}
	}
	return nil
}

func (s *store) accountByID(id string) *account {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}
