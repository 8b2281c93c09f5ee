package suggestion

import (
	_ "embed"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/gateway"
	"github.com/iota-uz/suggestion-admin/pkg/reference"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

const (
	OrgTable    = "suggestion-orgs"
	RecordTable = "records"
)

// ServiceTypes are the categories a service record may carry.
var ServiceTypes = []string{"ACCOUNT", "CREDIT", "CARD"}

//go:embed defaults/org_reference.json
var defaultOrgReference []byte

// TableDef is everything needed to build one table controller.
type TableDef struct {
	Schema      *fields.Schema
	Endpoints   gateway.Endpoints
	AfterSubmit tablectl.AfterSubmit
	Defaults    []reference.Entry
}

func OrgSuggestionSchema() *fields.Schema {
	return fields.NewSchema(OrgTable,
		fields.Descriptor{Name: "orgName", Label: "Org Name", Kind: fields.KindString, Rule: fields.RuleRequired},
		fields.Descriptor{Name: "orgCode", Label: "Org Code", Kind: fields.KindString, Rule: fields.RuleRequired, Derived: true},
		fields.Descriptor{Name: "srcServiceType", Label: "Service Type", Kind: fields.KindString, Rule: fields.RuleRequired, Derived: true, Tagged: true},
		fields.Descriptor{Name: "suggestionOrgId", Label: "Suggestion Org ID", Kind: fields.KindInt, SaveRule: fields.RulePositive},
		fields.Descriptor{
			Name:     "displayOrder",
			Label:    "Display Order",
			Kind:     fields.KindInt,
			Rule:     fields.RuleOptionalNonNegative,
			SaveRule: fields.RuleNonNegative,
		},
	).WithKeyField("orgName").WithFilterField("srcServiceType")
}

func ServiceRecordSchema() *fields.Schema {
	return fields.NewSchema(RecordTable,
		fields.Descriptor{
			Name:                "serviceType",
			Label:               "Service Type",
			Kind:                fields.KindString,
			Rule:                fields.RuleOneOf,
			Options:             ServiceTypes,
			Tagged:              true,
			InheritFromPrevious: true,
			Default:             fields.Text(ServiceTypes[0]),
		},
		fields.Descriptor{Name: "title", Label: "Title", Kind: fields.KindString, Rule: fields.RuleRequired},
		fields.Descriptor{Name: "sortOrder", Label: "Sort Order", Kind: fields.KindInt, Rule: fields.RuleNonNegative},
	).WithFilterField("serviceType")
}

// DefaultOrgReference is the lookup list used while the backend one is unavailable.
func DefaultOrgReference() []reference.Entry {
	entries, err := reference.Parse(defaultOrgReference, "orgName")
	if err != nil {
		panic(err)
	}
	return entries
}

// Tables lists both tables. referencePath is the backend path of the org
// lookup list.
func Tables(referencePath string) []TableDef {
	return []TableDef{
		{
			Schema: OrgSuggestionSchema(),
			Endpoints: gateway.Endpoints{
				Collection:  "/api/v1/suggestion_org",
				Reference:   referencePath,
				FilterParam: "srcServiceType",
			},
			AfterSubmit: tablectl.ReloadAfterSubmit,
			Defaults:    DefaultOrgReference(),
		},
		{
			Schema: ServiceRecordSchema(),
			Endpoints: gateway.Endpoints{
				Collection:  "/api/records",
				FilterParam: "serviceType",
			},
			AfterSubmit: tablectl.ResetAfterSubmit,
		},
	}
}
