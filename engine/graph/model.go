package graph

// SiteNode is an archaeological site as stored in the heritage graph.
type SiteNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ville   string `json:"ville"`
	Periode string `json:"periode"`
	Statut  string `json:"statut"`
}

func siteToProps(s SiteNode) map[string]any {
	return map[string]any{
		"id":      s.ID,
		"name":    s.Name,
		"ville":   s.Ville,
		"periode": s.Periode,
		"statut":  s.Statut,
	}
}

func siteFromProps(props map[string]any) SiteNode {
	return SiteNode{
		ID:      stringProp(props, "id"),
		Name:    stringProp(props, "name"),
		Ville:   stringProp(props, "ville"),
		Periode: stringProp(props, "periode"),
		Statut:  stringProp(props, "statut"),
	}
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
