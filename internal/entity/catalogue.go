package entity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
)

// Registry resolves page slugs (with or without a .php suffix) to configs.
type Registry struct {
	configs map[string]*Config
	aliases map[string]string
	order   []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{configs: map[string]*Config{}, aliases: map[string]string{}}
}

// Register adds cfg under its slug plus any aliases.
func (r *Registry) Register(cfg *Config, aliases ...string) {
	if _, exists := r.configs[cfg.Slug]; !exists {
		r.order = append(r.order, cfg.Slug)
	}
	r.configs[cfg.Slug] = cfg
	for _, alias := range aliases {
		r.aliases[alias] = cfg.Slug
	}
}

// Lookup resolves a page name.
func (r *Registry) Lookup(page string) (*Config, bool) {
	slug := strings.TrimSuffix(strings.ToLower(strings.Trim(page, "/")), ".php")
	if target, ok := r.aliases[slug]; ok {
		slug = target
	}
	cfg, ok := r.configs[slug]
	return cfg, ok
}

// All returns configs in registration order.
func (r *Registry) All() []*Config {
	out := make([]*Config, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.configs[slug])
	}
	return out
}

// Aliases returns the aliases registered for slug, sorted.
func (r *Registry) Aliases(slug string) []string {
	var out []string
	for alias, target := range r.aliases {
		if target == slug {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Catalogue registers every admin listing page, reading tables with prefix.
func Catalogue(prefix string) *Registry {
	r := NewRegistry()
	users := Users(prefix)
	r.Register(users, "user_management", "user_details")
	r.Register(ActiveUsers(prefix))
	r.Register(DepartmentManagers(prefix))
	r.Register(RecentUploads(prefix))
	r.Register(Enrollments(prefix))
	r.Register(Schools(prefix), "schools_detail")
	r.Register(SuspendedSchools(prefix))
	return r
}

func personDisplay(r models.Record) string {
	name := r.String("fullname")
	if name == "" {
		return r.String("username")
	}
	return fmt.Sprintf("%s (%s)", name, r.String("username"))
}

func accountStatistics() []Statistic {
	return []Statistic{
		{Name: "total"},
		{Name: "active", Filters: map[string]string{"status": "active"}},
		{Name: "inactive", Filters: map[string]string{"status": "inactive"}},
		{Name: "suspended", Filters: map[string]string{"status": "suspended"}},
	}
}

// Users lists site accounts, excluding deleted ones, the guest and the main admin.
func Users(prefix string) *Config {
	return &Config{
		Slug:     "users",
		Title:    "User management",
		ItemsKey: "users",
		Source:   query.Source{Name: "users", From: prefix + "user u"},
		Fields: []Field{
			{Name: "id", Column: "u.id", Kind: KindInt},
			{Name: "username", Column: "u.username", Label: "Username"},
			{Name: "email", Column: "u.email", Label: "Email"},
			{Name: "firstname", Column: "u.firstname", Label: "First name"},
			{Name: "lastname", Column: "u.lastname", Label: "Last name"},
			{Name: "city", Column: "u.city", Label: "City"},
			{Name: "timecreated", Column: "u.timecreated", Label: "Created", Kind: KindTime},
			{Name: "lastaccess", Column: "u.lastaccess", Label: "Last access", Kind: KindTime},
			{Name: "suspended", Column: "u.suspended", Label: "Suspended", Kind: KindBool},
			{Name: "deleted", Column: "u.deleted", Kind: KindBool},
		},
		Searchable:  []string{"username", "email", "firstname", "lastname", "city"},
		RankFields:  []string{"username", "email", "firstname", "lastname"},
		LabelField:  "username",
		Sortable:    []string{"id", "username", "email", "firstname", "lastname", "city", "timecreated", "lastaccess"},
		DefaultSort: models.Sort{Field: "lastaccess", Direction: models.Desc},
		BaseFilters: []query.Expr{query.Eq("deleted", 0), query.Gt("id", 2)},
		Filters: append([]Filter{
			{Name: "status", Label: "Status", Options: userStatusOptions, Apply: accountStatus},
		}, dateRange("timecreated")...),
		Statistics: accountStatistics(),
		FullName:   []string{"firstname", "lastname"},
		Display:    personDisplay,
	}
}

// ActiveUsers is the users listing restricted to active accounts by default.
func ActiveUsers(prefix string) *Config {
	cfg := Users(prefix)
	cfg.Slug = "active_users"
	cfg.Title = "Active users"
	filters := make([]Filter, len(cfg.Filters))
	copy(filters, cfg.Filters)
	for i := range filters {
		if filters[i].Name == "status" {
			filters[i].Default = "active"
		}
	}
	cfg.Filters = filters
	return cfg
}

// DepartmentManagers lists company users holding a manager role in a department.
func DepartmentManagers(prefix string) *Config {
	from := fmt.Sprintf("%[1]scompany_users cu JOIN %[1]suser u ON u.id = cu.userid "+
		"JOIN %[1]sdepartment d ON d.id = cu.departmentid JOIN %[1]scompany c ON c.id = cu.companyid", prefix)
	return &Config{
		Slug:     "department_managers",
		Title:    "Department managers",
		ItemsKey: "managers",
		Source:   query.Source{Name: "department_managers", From: from},
		Fields: []Field{
			{Name: "id", Column: "cu.id", Kind: KindInt},
			{Name: "userid", Column: "u.id", Kind: KindInt},
			{Name: "username", Column: "u.username", Label: "Username"},
			{Name: "email", Column: "u.email", Label: "Email"},
			{Name: "firstname", Column: "u.firstname", Label: "First name"},
			{Name: "lastname", Column: "u.lastname", Label: "Last name"},
			{Name: "department", Column: "d.name", Label: "Department"},
			{Name: "company", Column: "c.name", Label: "School"},
			{Name: "companyid", Column: "c.id", Kind: KindInt},
			{Name: "lastaccess", Column: "u.lastaccess", Label: "Last access", Kind: KindTime},
			{Name: "suspended", Column: "u.suspended", Label: "Suspended", Kind: KindBool},
			{Name: "managertype", Column: "cu.managertype", Kind: KindInt},
			{Name: "deleted", Column: "u.deleted", Kind: KindBool},
		},
		Searchable:  []string{"username", "email", "firstname", "lastname", "department", "company"},
		RankFields:  []string{"username", "email", "firstname", "lastname"},
		LabelField:  "username",
		Sortable:    []string{"username", "email", "firstname", "lastname", "department", "company", "lastaccess"},
		DefaultSort: models.Sort{Field: "lastname", Direction: models.Asc},
		BaseFilters: []query.Expr{query.Eq("deleted", 0), query.Gt("managertype", 0)},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: userStatusOptions, Apply: accountStatus},
			{Name: "company", Label: "School id", Input: "number", Apply: idEquals("companyid")},
		},
		Statistics: accountStatistics(),
		FullName:   []string{"firstname", "lastname"},
		Display:    personDisplay,
	}
}

// RecentUploads lists user uploaded files, skipping directory entries.
func RecentUploads(prefix string) *Config {
	return &Config{
		Slug:     "recent_uploads",
		Title:    "Recent uploads",
		ItemsKey: "uploads",
		Source:   query.Source{Name: "recent_uploads", From: fmt.Sprintf("%[1]sfiles f JOIN %[1]suser u ON u.id = f.userid", prefix)},
		Fields: []Field{
			{Name: "id", Column: "f.id", Kind: KindInt},
			{Name: "filename", Column: "f.filename", Label: "File"},
			{Name: "filesize", Column: "f.filesize", Label: "Size", Kind: KindInt},
			{Name: "mimetype", Column: "f.mimetype", Label: "Type"},
			{Name: "component", Column: "f.component", Label: "Component"},
			{Name: "timecreated", Column: "f.timecreated", Label: "Uploaded", Kind: KindTime},
			{Name: "userid", Column: "u.id", Kind: KindInt},
			{Name: "username", Column: "u.username", Label: "Uploaded by"},
			{Name: "email", Column: "u.email"},
			{Name: "firstname", Column: "u.firstname"},
			{Name: "lastname", Column: "u.lastname"},
		},
		Searchable:  []string{"filename", "username", "email", "firstname", "lastname"},
		RankFields:  []string{"filename", "username", "email"},
		LabelField:  "filename",
		Sortable:    []string{"filename", "filesize", "mimetype", "component", "timecreated", "username"},
		DefaultSort: models.Sort{Field: "timecreated", Direction: models.Desc},
		BaseFilters: []query.Expr{query.Neq("filename", "."), query.Gt("filesize", 0)},
		Filters: append([]Filter{
			{Name: "mimetype", Label: "Type", Options: []Option{
				{Value: "", Label: "Any type"},
				{Value: "image", Label: "Images"},
				{Value: "video", Label: "Videos"},
				{Value: "pdf", Label: "PDF"},
			}, Apply: textContains("mimetype")},
		}, dateRange("timecreated")...),
		Statistics: []Statistic{{Name: "total"}},
		FullName:   []string{"firstname", "lastname"},
		Display: func(r models.Record) string {
			return fmt.Sprintf("%s (%s)", r.String("filename"), r.String("username"))
		},
	}
}

// Enrollments lists course enrolments. Status follows the enrolment's own
// status column (0 active, 1 suspended).
func Enrollments(prefix string) *Config {
	from := fmt.Sprintf("%[1]suser_enrolments ue JOIN %[1]senrol e ON e.id = ue.enrolid "+
		"JOIN %[1]suser u ON u.id = ue.userid JOIN %[1]scourse c ON c.id = e.courseid", prefix)
	return &Config{
		Slug:     "enrollments",
		Title:    "Enrollments",
		ItemsKey: "enrollments",
		Source:   query.Source{Name: "enrollments", From: from},
		Fields: []Field{
			{Name: "id", Column: "ue.id", Kind: KindInt},
			{Name: "userid", Column: "u.id", Kind: KindInt},
			{Name: "username", Column: "u.username", Label: "Username"},
			{Name: "email", Column: "u.email", Label: "Email"},
			{Name: "firstname", Column: "u.firstname", Label: "First name"},
			{Name: "lastname", Column: "u.lastname", Label: "Last name"},
			{Name: "courseid", Column: "c.id", Kind: KindInt},
			{Name: "coursename", Column: "c.fullname", Label: "Course"},
			{Name: "enrolmethod", Column: "e.enrol", Label: "Method"},
			{Name: "status", Column: "ue.status", Label: "Suspended", Kind: KindBool},
			{Name: "timestart", Column: "ue.timestart", Label: "Starts", Kind: KindTime},
			{Name: "timecreated", Column: "ue.timecreated", Label: "Enrolled", Kind: KindTime},
			{Name: "deleted", Column: "u.deleted", Kind: KindBool},
		},
		Searchable:  []string{"username", "email", "firstname", "lastname", "coursename"},
		RankFields:  []string{"username", "email", "firstname", "lastname"},
		LabelField:  "username",
		Sortable:    []string{"username", "email", "lastname", "coursename", "timestart", "timecreated"},
		DefaultSort: models.Sort{Field: "timecreated", Direction: models.Desc},
		BaseFilters: []query.Expr{query.Eq("deleted", 0)},
		Filters: append([]Filter{
			{Name: "status", Label: "Status", Options: []Option{
				{Value: "all", Label: "All enrolments"},
				{Value: "active", Label: "Active"},
				{Value: "suspended", Label: "Suspended"},
			}, Apply: flagStatus("status")},
			{Name: "course", Label: "Course id", Input: "number", Apply: idEquals("courseid")},
		}, dateRange("timecreated")...),
		Statistics: []Statistic{
			{Name: "total"},
			{Name: "active", Filters: map[string]string{"status": "active"}},
			{Name: "suspended", Filters: map[string]string{"status": "suspended"}},
		},
		FullName: []string{"firstname", "lastname"},
		Display: func(r models.Record) string {
			return fmt.Sprintf("%s · %s", personDisplay(r), r.String("coursename"))
		},
	}
}

func schoolFields() []Field {
	return []Field{
		{Name: "id", Column: "c.id", Kind: KindInt},
		{Name: "name", Column: "c.name", Label: "School"},
		{Name: "shortname", Column: "c.shortname", Label: "Short name"},
		{Name: "city", Column: "c.city", Label: "City"},
		{Name: "country", Column: "c.country", Label: "Country"},
		{Name: "suspended", Column: "c.suspended", Label: "Suspended", Kind: KindBool},
		{Name: "timecreated", Column: "c.timecreated", Label: "Created", Kind: KindTime},
	}
}

func schoolDisplay(r models.Record) string {
	if short := r.String("shortname"); short != "" {
		return fmt.Sprintf("%s (%s)", r.String("name"), short)
	}
	return r.String("name")
}

// Schools lists companies (schools).
func Schools(prefix string) *Config {
	return &Config{
		Slug:        "schools",
		Title:       "Schools",
		ItemsKey:    "schools",
		Source:      query.Source{Name: "schools", From: prefix + "company c"},
		Fields:      schoolFields(),
		Searchable:  []string{"name", "shortname", "city", "country"},
		RankFields:  []string{"name", "shortname", "city", "country"},
		LabelField:  "name",
		Sortable:    []string{"name", "shortname", "city", "country", "timecreated"},
		DefaultSort: models.Sort{Field: "name", Direction: models.Asc},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: []Option{
				{Value: "all", Label: "All schools"},
				{Value: "active", Label: "Active"},
				{Value: "suspended", Label: "Suspended"},
			}, Apply: flagStatus("suspended")},
			{Name: "country", Label: "Country", Apply: upperEquals("country")},
		},
		Statistics: []Statistic{
			{Name: "total"},
			{Name: "active", Filters: map[string]string{"status": "active"}},
			{Name: "suspended", Filters: map[string]string{"status": "suspended"}},
		},
		Display: schoolDisplay,
	}
}

// SuspendedSchools lists only suspended schools.
func SuspendedSchools(prefix string) *Config {
	cfg := Schools(prefix)
	cfg.Slug = "suspended_schools"
	cfg.Title = "Suspended schools"
	cfg.ItemsKey = "schools"
	cfg.BaseFilters = []query.Expr{query.Eq("suspended", 1)}
	cfg.DefaultSort = models.Sort{Field: "timecreated", Direction: models.Desc}
	cfg.Filters = []Filter{{Name: "country", Label: "Country", Apply: upperEquals("country")}}
	cfg.Statistics = []Statistic{{Name: "total"}}
	return cfg
}
