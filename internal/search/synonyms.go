package search

// SubjectSynonyms maps catalogers' and users' vocabulary onto the wording
// used in schedule headings and manual notes. Keys are lower-case.
//
// Entries favor the heading term first since expansion is capped per
// keyword (see WithMaxExpansions).
var SubjectSynonyms = map[string][]string{
	// Library and information science (020)
	"library":        {"libraries", "library science", "information centers"},
	"libraries":      {"library", "information centers", "archives"},
	"librarianship":  {"library science", "library operations"},
	"cataloging":     {"cataloguing", "bibliographic analysis", "classification"},
	"classification": {"cataloging", "subject analysis"},
	"archives":       {"archival", "records management", "libraries"},
	"information":    {"information science", "documentation"},
	"reading":        {"literacy", "reading promotion"},
	"bibliography":   {"bibliographies", "catalogs"},
	"museum":         {"museums", "museology"},

	// Computing (004-006)
	"computer":    {"computers", "computing", "data processing"},
	"computing":   {"computer science", "data processing"},
	"software":    {"programs", "programming"},
	"programming": {"computer programming", "software"},
	"internet":    {"world wide web", "networks"},
	"ai":          {"artificial intelligence", "machine learning"},

	// Social sciences (300)
	"economics": {"economy", "economic"},
	"law":       {"legal", "jurisprudence"},
	"education": {"teaching", "schools", "pedagogy"},
	"politics":  {"political science", "government"},
	"sociology": {"social groups", "society"},
	"women":     {"gender", "females"},
	"children":  {"young people", "juveniles", "childhood"},
	"labor":     {"labour", "workers", "employment"},
	"war":       {"military", "warfare", "wars"},

	// Science and technology (500-600)
	"medicine":    {"medical", "health", "clinical"},
	"health":      {"hygiene", "medicine", "wellness"},
	"cooking":     {"cookery", "food preparation", "recipes"},
	"engineering": {"technology", "applied physics"},
	"agriculture": {"farming", "crops"},
	"biology":     {"life sciences", "organisms"},
	"environment": {"ecology", "environmental"},

	// Arts, literature, history (700-900)
	"art":        {"arts", "fine arts"},
	"music":      {"musical", "songs"},
	"sports":     {"athletics", "games", "recreation"},
	"literature": {"literary", "belles-lettres"},
	"poetry":     {"poems", "verse"},
	"fiction":    {"novels", "stories"},
	"history":    {"historical", "historiography"},
	"biography":  {"biographies", "lives", "memoirs"},
	"geography":  {"travel", "places"},

	// Standard subdivision forms (T1)
	"dictionary":    {"dictionaries", "encyclopedias"},
	"encyclopedia":  {"encyclopedias", "dictionaries"},
	"periodical":    {"periodicals", "serials", "journals"},
	"journal":       {"periodicals", "serials"},
	"handbook":      {"manuals", "handbooks"},
	"study":         {"education", "research"},
	"philosophy":    {"theory"},
	"organizations": {"societies", "associations"},
}
