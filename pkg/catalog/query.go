package catalog

import "strings"

// DeclarationSearchResult holds a declaration match with the reason it matched.
type DeclarationSearchResult struct {
	Module      string
	Kind        string // "export" or "type"
	Declaration *Declaration
	MatchReason string
}

// ModuleSummary is the short listing form of a module.
type ModuleSummary struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
	Exports int    `json:"exports"`
	Types   int    `json:"types"`
	Exempt  bool   `json:"exempt,omitempty"`
}

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *Index
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *Index) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a catalog from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// ListModules returns module summaries, optionally filtered by a keyword
// matched case-insensitively against the module name and comment.
func (q *QueryService) ListModules(keyword string) []ModuleSummary {
	keyword = strings.ToLower(keyword)
	result := make([]ModuleSummary, 0, len(q.Catalog.Modules))

	for _, mod := range q.Catalog.Modules {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(mod.Name), keyword) &&
			!strings.Contains(strings.ToLower(mod.Comment), keyword) {
			continue
		}
		result = append(result, ModuleSummary{
			Name:    mod.Name,
			Comment: firstLine(mod.Comment),
			Exports: len(mod.Exports),
			Types:   len(mod.Types),
			Exempt:  mod.Exempt,
		})
	}

	return result
}

// GetModule looks up a module by name.
func (q *QueryService) GetModule(name string) (*Module, bool) {
	mod, ok := q.Index.ModuleByName[name]
	return mod, ok
}

// GetDeclaration looks up a named declaration of a module, searching exports
// before types.
func (q *QueryService) GetDeclaration(module, name string) (*Declaration, bool) {
	d, ok := q.Index.DeclarationByKey[DeclarationKey(module, name)]
	return d, ok
}

// Search finds declarations whose name, comment or member names contain the
// keyword (case-insensitive). Name matches rank before comment and member
// matches. A limit <= 0 returns every match.
func (q *QueryService) Search(keyword string, limit int) []DeclarationSearchResult {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return []DeclarationSearchResult{}
	}

	var byName, byOther []DeclarationSearchResult
	for i := range q.Catalog.Modules {
		mod := &q.Catalog.Modules[i]
		for _, group := range []struct {
			kind  string
			decls []Declaration
		}{{"export", mod.Exports}, {"type", mod.Types}} {
			for j := range group.decls {
				d := &group.decls[j]
				r := DeclarationSearchResult{Module: mod.Name, Kind: group.kind, Declaration: d}
				switch {
				case strings.Contains(strings.ToLower(d.Name), keyword):
					r.MatchReason = "name"
					byName = append(byName, r)
				case strings.Contains(strings.ToLower(d.Comment), keyword):
					r.MatchReason = "comment"
					byOther = append(byOther, r)
				case memberMatches(d.Children, keyword):
					r.MatchReason = "member"
					byOther = append(byOther, r)
				}
			}
		}
	}

	result := append(byName, byOther...)
	if result == nil {
		result = []DeclarationSearchResult{}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func memberMatches(members []Member, keyword string) bool {
	for _, m := range members {
		if strings.Contains(strings.ToLower(m.Name), keyword) {
			return true
		}
		if memberMatches(m.Children, keyword) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
