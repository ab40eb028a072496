package registry

import (
	"sort"
	"strings"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/search"
)

// Catalogue is the set of resources, in navigation order.
type Catalogue struct {
	resources []Resource
	byName    map[string]int
}

func NewCatalogue(resources ...Resource) *Catalogue {
	c := &Catalogue{byName: make(map[string]int, len(resources))}
	for _, r := range resources {
		c.byName[r.Name] = len(c.resources)
		c.resources = append(c.resources, r)
	}
	return c
}

// All returns every resource.
func (c *Catalogue) All() []Resource {
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}

// ForService returns the resources of one registry.
func (c *Catalogue) ForService(t appstate.ServiceType) []Resource {
	var out []Resource
	for _, r := range c.resources {
		if r.Service == t {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalogue) Lookup(name string) (Resource, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Resource{}, false
	}
	return c.resources[i], true
}

// ForRoute finds the resource whose route is the longest prefix of path.
func (c *Catalogue) ForRoute(path string) (Resource, bool) {
	candidates := make([]Resource, 0)
	for _, r := range c.resources {
		if path == r.Route || strings.HasPrefix(path, r.Route+"/") {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return Resource{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return len(candidates[i].Route) > len(candidates[j].Route)
	})
	return candidates[0], true
}

// Names lists resource names, for flag completion and help text.
func (c *Catalogue) Names() []string {
	out := make([]string, len(c.resources))
	for i, r := range c.resources {
		out[i] = r.Name
	}
	return out
}

func withStatus(status string) search.Body {
	b := search.DefaultBody()
	if status != "" && status != search.FilterAll {
		b.Status = &status
	}
	return b
}

var requestTabs = []StatusTab{
	{Label: "New", Value: "NEW"},
	{Label: "In progress", Value: "IN_PROGRESS"},
	{Label: "Accepted", Value: "ACCEPTED"},
	{Label: "Rejected", Value: "REJECTED"},
	{Label: "All", Value: search.FilterAll},
}

var rangeTabs = []StatusTab{
	{Label: "Active", Value: "ACTIVE"},
	{Label: "Closed", Value: "CLOSED"},
	{Label: "All", Value: search.FilterAll},
}

var templateColumns = []Column{
	{ID: "name", Label: "Name", Path: "name"},
	{ID: "langCode", Label: "Language", Path: "langCode"},
	{ID: "messageType", Label: "Type", Path: "messageType"},
}

var messageColumns = []Column{
	{ID: "recipient", Label: "Recipient", Path: "recipient"},
	{ID: "subject", Label: "Subject", Path: "subject"},
	{ID: "sent", Label: "Sent", Path: "sent", Format: FormatDate},
}

// Default returns the catalogue of the Identifier Services registry API.
func Default() *Catalogue {
	return NewCatalogue(
		// ISBN / ISMN
		Resource{
			Name:      "isbn-publishers",
			Title:     "Publishers",
			Service:   appstate.ServiceISBN,
			Route:     "/isbn-registry/publishers",
			QueryPath: "/api/isbn-registry/publishers/query",
			ItemPath:  "/api/isbn-registry/publishers",
			Columns: []Column{
				{ID: "officialName", Label: "Name", Path: "officialName"},
				{ID: "otherNames", Label: "Other names", Path: "otherNames"},
				{ID: "activeIdentifiersIsbn", Label: "ISBN", Path: "activeIdentifierIsbn"},
				{ID: "activeIdentifiersIsmn", Label: "ISMN", Path: "activeIdentifierIsmn"},
			},
			DefaultBody: search.DefaultBody(),
		},
		Resource{
			Name:      "isbn-publisher-requests",
			Title:     "Publisher requests",
			Service:   appstate.ServiceISBN,
			Route:     "/isbn-registry/requests/publishers",
			QueryPath: "/api/isbn-registry/requests/publishers/query",
			ItemPath:  "/api/isbn-registry/requests/publishers",
			Columns: []Column{
				{ID: "officialName", Label: "Name", Path: "officialName"},
				{ID: "langCode", Label: "Language", Path: "langCode"},
				{ID: "created", Label: "Created", Path: "created", Format: FormatDate},
			},
			YearFilter:  true,
			DefaultBody: search.DefaultBody(),
		},
		Resource{
			Name:      "isbn-publication-requests",
			Title:     "Publication requests",
			Service:   appstate.ServiceISBN,
			Route:     "/isbn-registry/requests/publications",
			QueryPath: "/api/isbn-registry/requests/publications/query",
			ItemPath:  "/api/isbn-registry/requests/publications",
			Columns: []Column{
				{ID: "title", Label: "Title", Path: "title"},
				{ID: "officialName", Label: "Publisher", Path: "officialName"},
				{ID: "publicationType", Label: "Type", Path: "publicationType"},
				{ID: "created", Label: "Created", Path: "created", Format: FormatDate},
			},
			StatusTabs:  requestTabs,
			DefaultBody: withStatus("NEW"),
		},
		Resource{
			Name:      "isbn-ranges",
			Title:     "ISBN ranges",
			Service:   appstate.ServiceISBN,
			Route:     "/isbn-registry/ranges/isbn",
			QueryPath: "/api/isbn-registry/isbn-ranges/query",
			ItemPath:  "/api/isbn-registry/isbn-ranges",
			Columns: []Column{
				{ID: "prefix", Label: "Prefix", Path: "prefix"},
				{ID: "category", Label: "Category", Path: "category"},
				{ID: "rangeBegin", Label: "Begin", Path: "rangeBegin"},
				{ID: "rangeEnd", Label: "End", Path: "rangeEnd"},
				{ID: "free", Label: "Free", Path: "free"},
			},
			StatusTabs:  rangeTabs,
			Categories:  []int{1, 2, 3, 4, 5},
			DefaultBody: withStatus("ACTIVE"),
		},
		Resource{
			Name:      "ismn-ranges",
			Title:     "ISMN ranges",
			Service:   appstate.ServiceISBN,
			Route:     "/isbn-registry/ranges/ismn",
			QueryPath: "/api/isbn-registry/ismn-ranges/query",
			ItemPath:  "/api/isbn-registry/ismn-ranges",
			Columns: []Column{
				{ID: "prefix", Label: "Prefix", Path: "prefix"},
				{ID: "category", Label: "Category", Path: "category"},
				{ID: "rangeBegin", Label: "Begin", Path: "rangeBegin"},
				{ID: "rangeEnd", Label: "End", Path: "rangeEnd"},
				{ID: "free", Label: "Free", Path: "free"},
			},
			StatusTabs:  rangeTabs,
			Categories:  []int{3, 5, 6, 7},
			DefaultBody: withStatus("ACTIVE"),
		},
		Resource{
			Name:      "isbn-identifier-batches",
			Title:     "Identifier batches",
			Service:   appstate.ServiceISBN,
			Route:     "/isbn-registry/identifierbatches",
			QueryPath: "/api/isbn-registry/identifierbatches/query",
			ItemPath:  "/api/isbn-registry/identifierbatches",
			Columns: []Column{
				{ID: "publisherName", Label: "Publisher", Path: "publisherName"},
				{ID: "identifierType", Label: "Type", Path: "identifierType"},
				{ID: "identifierCount", Label: "Count", Path: "identifierCount"},
				{ID: "created", Label: "Created", Path: "created", Format: FormatDate},
			},
			YearFilter:  true,
			DefaultBody: search.DefaultBody(),
		},
		Resource{
			Name:        "isbn-message-templates",
			Title:       "Message templates",
			Service:     appstate.ServiceISBN,
			Route:       "/isbn-registry/messagetemplates",
			QueryPath:   "/api/isbn-registry/messagetemplates/query",
			ItemPath:    "/api/isbn-registry/messagetemplates",
			Columns:     templateColumns,
			DefaultBody: search.DefaultBody(),
		},
		Resource{
			Name:        "isbn-messages",
			Title:       "Messages",
			Service:     appstate.ServiceISBN,
			Route:       "/isbn-registry/messages",
			QueryPath:   "/api/isbn-registry/messages/query",
			ItemPath:    "/api/isbn-registry/messages",
			Columns:     messageColumns,
			DefaultBody: search.DefaultBody(),
			ReadOnly:    true,
		},

		// ISSN
		Resource{
			Name:      "issn-publishers",
			Title:     "Publishers",
			Service:   appstate.ServiceISSN,
			Route:     "/issn-registry/publishers",
			QueryPath: "/api/issn-registry/publishers/query",
			ItemPath:  "/api/issn-registry/publishers",
			Columns: []Column{
				{ID: "officialName", Label: "Name", Path: "officialName"},
				{ID: "contactPerson", Label: "Contact", Path: "contactPerson.name"},
				{ID: "emailCommon", Label: "Email", Path: "emailCommon"},
			},
			DefaultBody: search.DefaultBody(),
		},
		Resource{
			Name:      "issn-publications",
			Title:     "Publications",
			Service:   appstate.ServiceISSN,
			Route:     "/issn-registry/publications",
			QueryPath: "/api/issn-registry/publications/query",
			ItemPath:  "/api/issn-registry/publications",
			Columns: []Column{
				{ID: "title", Label: "Title", Path: "title"},
				{ID: "issn", Label: "ISSN", Path: "issn"},
				{ID: "medium", Label: "Medium", Path: "medium"},
				{ID: "status", Label: "Status", Path: "status"},
			},
			StatusTabs: []StatusTab{
				{Label: "Received", Value: "NO_PREPUBLICATION_RECORD"},
				{Label: "Issued", Value: "ISSN_FROZEN"},
				{Label: "Completed", Value: "COMPLETED"},
				{Label: "All", Value: search.FilterAll},
			},
			YearFilter:  true,
			DefaultBody: withStatus("NO_PREPUBLICATION_RECORD"),
		},
		Resource{
			Name:      "issn-requests",
			Title:     "Requests",
			Service:   appstate.ServiceISSN,
			Route:     "/issn-registry/requests",
			QueryPath: "/api/issn-registry/requests/query",
			ItemPath:  "/api/issn-registry/requests",
			Columns: []Column{
				{ID: "publisher", Label: "Publisher", Path: "publisher"},
				{ID: "publicationCount", Label: "Publications", Path: "publicationCount"},
				{ID: "created", Label: "Created", Path: "created", Format: FormatDate},
			},
			StatusTabs: []StatusTab{
				{Label: "Not handled", Value: "NOT_HANDLED"},
				{Label: "Not notified", Value: "NOT_NOTIFIED"},
				{Label: "Completed", Value: "COMPLETED"},
				{Label: "All", Value: search.FilterAll},
			},
			DefaultBody: withStatus("NOT_HANDLED"),
		},
		Resource{
			Name:        "issn-message-templates",
			Title:       "Message templates",
			Service:     appstate.ServiceISSN,
			Route:       "/issn-registry/messagetemplates",
			QueryPath:   "/api/issn-registry/messagetemplates/query",
			ItemPath:    "/api/issn-registry/messagetemplates",
			Columns:     templateColumns,
			DefaultBody: search.DefaultBody(),
		},
		Resource{
			Name:        "issn-messages",
			Title:       "Messages",
			Service:     appstate.ServiceISSN,
			Route:       "/issn-registry/messages",
			QueryPath:   "/api/issn-registry/messages/query",
			ItemPath:    "/api/issn-registry/messages",
			Columns:     messageColumns,
			DefaultBody: search.DefaultBody(),
			ReadOnly:    true,
		},
	)
}
