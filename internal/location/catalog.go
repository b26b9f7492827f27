// Package location holds the static administrative-division catalog
// (distrito, provincia, departamento). The client form offers these rows for
// selection and the service rejects a triple that does not come from one row.
package location

// Row is one selectable administrative-division triple.
type Row struct {
	District   string `json:"district"`
	Province   string `json:"province"`
	Department string `json:"department"`
}

// catalog is ordered by department, then province, then district, matching
// the order the selection lists present.
var catalog = []Row{
	{"Cayma", "Arequipa", "Arequipa"},
	{"Cerro Colorado", "Arequipa", "Arequipa"},
	{"José Luis Bustamante y Rivero", "Arequipa", "Arequipa"},
	{"Yanahuara", "Arequipa", "Arequipa"},
	{"Bellavista", "Callao", "Callao"},
	{"Callao", "Callao", "Callao"},
	{"La Perla", "Callao", "Callao"},
	{"Ventanilla", "Callao", "Callao"},
	{"San Sebastián", "Cusco", "Cusco"},
	{"Santiago", "Cusco", "Cusco"},
	{"Wanchaq", "Cusco", "Cusco"},
	{"Huancayo", "Huancayo", "Junín"},
	{"El Tambo", "Huancayo", "Junín"},
	{"Trujillo", "Trujillo", "La Libertad"},
	{"Víctor Larco Herrera", "Trujillo", "La Libertad"},
	{"Chiclayo", "Chiclayo", "Lambayeque"},
	{"José Leonardo Ortiz", "Chiclayo", "Lambayeque"},
	{"La Victoria", "Chiclayo", "Lambayeque"},
	{"Ate", "Lima", "Lima"},
	{"Barranco", "Lima", "Lima"},
	{"Breña", "Lima", "Lima"},
	{"Chorrillos", "Lima", "Lima"},
	{"Comas", "Lima", "Lima"},
	{"Jesús María", "Lima", "Lima"},
	{"La Molina", "Lima", "Lima"},
	{"La Victoria", "Lima", "Lima"},
	{"Lince", "Lima", "Lima"},
	{"Los Olivos", "Lima", "Lima"},
	{"Magdalena del Mar", "Lima", "Lima"},
	{"Miraflores", "Lima", "Lima"},
	{"Pueblo Libre", "Lima", "Lima"},
	{"San Borja", "Lima", "Lima"},
	{"San Isidro", "Lima", "Lima"},
	{"San Juan de Lurigancho", "Lima", "Lima"},
	{"San Juan de Miraflores", "Lima", "Lima"},
	{"San Miguel", "Lima", "Lima"},
	{"Santiago de Surco", "Lima", "Lima"},
	{"Surquillo", "Lima", "Lima"},
	{"Villa El Salvador", "Lima", "Lima"},
	{"Iquitos", "Maynas", "Loreto"},
	{"Castilla", "Piura", "Piura"},
	{"Piura", "Piura", "Piura"},
	{"Tacna", "Tacna", "Tacna"},
}

// Rows returns the full catalog in presentation order.
func Rows() []Row {
	out := make([]Row, len(catalog))
	copy(out, catalog)
	return out
}

// Departments returns the distinct departments in catalog order.
func Departments() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range catalog {
		if !seen[r.Department] {
			seen[r.Department] = true
			out = append(out, r.Department)
		}
	}
	return out
}

// ProvincesOf returns the distinct provinces of a department.
func ProvincesOf(department string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range catalog {
		if r.Department == department && !seen[r.Province] {
			seen[r.Province] = true
			out = append(out, r.Province)
		}
	}
	return out
}

// DistrictsOf returns the districts of a (department, province) pair.
func DistrictsOf(department, province string) []string {
	var out []string
	for _, r := range catalog {
		if r.Department == department && r.Province == province {
			out = append(out, r.District)
		}
	}
	return out
}

// ValidTriple reports whether the three values come from the same catalog
// row. All-empty triples are not valid; the form requires a selection.
func ValidTriple(district, province, department string) bool {
	for _, r := range catalog {
		if r.District == district && r.Province == province && r.Department == department {
			return true
		}
	}
	return false
}
