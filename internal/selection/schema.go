package selection

// Relation is a bit set of the relation and collection markers a request can
// carry. Markers are flags, never column names.
type Relation uint16

const (
	RelBrand Relation = 1 << iota
	RelCategory
	RelProducts
	RelChildren
	RelParent
	RelImageURLs
	RelTags
)

const (
	relationshipMask = RelBrand | RelCategory | RelProducts | RelChildren | RelParent
	collectionMask   = RelImageURLs | RelTags
)

var markers = map[string]Relation{
	"brand":     RelBrand,
	"category":  RelCategory,
	"products":  RelProducts,
	"children":  RelChildren,
	"parent":    RelParent,
	"imageUrls": RelImageURLs,
	"tags":      RelTags,
}

var relationNames = []struct {
	rel  Relation
	name string
}{
	{RelBrand, "brand"},
	{RelCategory, "category"},
	{RelProducts, "products"},
	{RelChildren, "children"},
	{RelParent, "parent"},
	{RelImageURLs, "imageUrls"},
	{RelTags, "tags"},
}

func (r Relation) Has(other Relation) bool { return r&other != 0 }

// List returns the marker names set in r, in a fixed order.
func (r Relation) List() []string {
	var out []string
	for _, rn := range relationNames {
		if r.Has(rn.rel) {
			out = append(out, rn.name)
		}
	}
	return out
}

func (r Relation) String() string {
	names := r.List()
	if len(names) == 0 {
		return "none"
	}
	s := names[0]
	for _, n := range names[1:] {
		s += "|" + n
	}
	return s
}

// FieldDef maps one output field to the storage columns needed to produce it.
type FieldDef struct {
	Name    string
	Columns []string
}

func Field(name string, columns ...string) FieldDef {
	return FieldDef{Name: name, Columns: columns}
}

// Schema is the closed set of output fields and relation markers an entity
// exposes, with their mapping to storage.
type Schema struct {
	Entity    string
	Table     string
	Alias     string
	Relations Relation

	defs  []FieldDef
	index map[string]int
}

func NewSchema(entity, table, alias string, relations Relation, defs ...FieldDef) *Schema {
	s := &Schema{
		Entity:    entity,
		Table:     table,
		Alias:     alias,
		Relations: relations,
		defs:      defs,
		index:     make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		s.index[d.Name] = i
	}
	return s
}

func (s *Schema) Knows(field string) bool {
	_, ok := s.index[field]
	return ok
}

func (s *Schema) Columns(field string) ([]string, bool) {
	i, ok := s.index[field]
	if !ok {
		return nil, false
	}
	return s.defs[i].Columns, true
}

// FieldNames returns every scalar field in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.defs))
	for i, d := range s.defs {
		out[i] = d.Name
	}
	return out
}

// AllColumns returns every storage column once, in declaration order.
func (s *Schema) AllColumns() []string {
	return s.columnsFor(s.FieldNames())
}

func (s *Schema) columnsFor(fields []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		cols, _ := s.Columns(f)
		for _, c := range cols {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

var Brand = NewSchema("brand", "brands", "b", RelProducts,
	Field(IDField, "id"),
	Field("name", "name"),
	Field("description", "description"),
	Field("logoUrl", "logo_url"),
	Field("websiteUrl", "website_url"),
	Field("active", "is_active"),
	Field("createdAt", "created_at"),
	Field("updatedAt", "updated_at"),
)

var Category = NewSchema("category", "categories", "c", RelParent|RelChildren|RelProducts,
	Field(IDField, "id"),
	Field("name", "name"),
	Field("slug", "slug"),
	Field("description", "description"),
	Field("imageUrl", "image_url"),
	Field("sortOrder", "sort_order"),
	Field("active", "is_active"),
	Field("parentId", "parent_id"),
	Field("root", "parent_id"),
	Field("createdAt", "created_at"),
	Field("updatedAt", "updated_at"),
)

var Product = NewSchema("product", "products", "p", RelBrand|RelCategory|RelImageURLs|RelTags,
	Field(IDField, "id"),
	Field("name", "name"),
	Field("description", "description"),
	Field("sku", "sku"),
	Field("slug", "slug"),
	Field("price", "price"),
	Field("compareAtPrice", "compare_at_price"),
	Field("stockQuantity", "stock_quantity"),
	Field("lowStockThreshold", "low_stock_threshold"),
	Field("weight", "weight"),
	Field("weightUnit", "weight_unit"),
	Field("active", "is_active"),
	Field("featured", "is_featured"),
	Field("trackInventory", "track_inventory"),
	Field("brandId", "brand_id"),
	Field("categoryId", "category_id"),
	Field("inStock", "track_inventory", "stock_quantity"),
	Field("lowStock", "track_inventory", "stock_quantity", "low_stock_threshold"),
	Field("createdAt", "created_at"),
	Field("updatedAt", "updated_at"),
)

// Related returns the schema a relation marker points at.
func Related(r Relation) *Schema {
	switch r {
	case RelBrand:
		return Brand
	case RelCategory, RelChildren, RelParent:
		return Category
	case RelProducts:
		return Product
	default:
		return nil
	}
}
