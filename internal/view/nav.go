package view

// NavItem is one link of the navigation shell.
type NavItem struct {
	Path   string
	Label  string
	Active bool
}

var routes = []NavItem{
	{Path: "/upload", Label: "Upload"},
	{Path: "/kpis", Label: "KPIs"},
	{Path: "/charts", Label: "Charts"},
	{Path: "/data", Label: "Data"},
	{Path: "/reports", Label: "Reports"},
}

// NavItems returns the route list with the entry matching current marked active.
func NavItems(current string) []NavItem {
	items := make([]NavItem, len(routes))
	for i, r := range routes {
		r.Active = r.Path == current
		items[i] = r
	}
	return items
}
