// Package arxiv implements the arXiv Atom API scraping provider.
package arxiv

import "encoding/xml"

// feed is the Atom document returned by the arXiv query API.
type feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults int      `xml:"totalResults"`
	Entries      []entry  `xml:"entry"`
}

// entry is one paper in the Atom feed.
type entry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
	Links []struct {
		Href string `xml:"href,attr"`
		Type string `xml:"type,attr"`
		Rel  string `xml:"rel,attr"`
	} `xml:"link"`
	DOI        string `xml:"doi"`
	JournalRef string `xml:"journal_ref"`
}

// CategoryEvents maps the main CS arXiv categories to their flagship
// conferences, used to seed event-oriented scrapes.
var CategoryEvents = map[string][]string{
	"cs.SE": {"ICSE", "FSE"},
	"cs.AI": {"AAAI", "IJCAI"},
	"cs.DB": {"SIGMOD", "VLDB"},
	"cs.LG": {"ICML", "NeurIPS"},
	"cs.CV": {"CVPR", "ICCV"},
	"cs.CL": {"ACL", "EMNLP"},
	"cs.CR": {"CCS", "USENIX Security"},
	"cs.DC": {"PODC", "DISC"},
	"cs.DS": {"SODA", "STOC"},
	"cs.HC": {"CHI", "UIST"},
	"cs.IR": {"SIGIR", "WSDM"},
	"cs.NI": {"SIGCOMM", "INFOCOM"},
	"cs.PL": {"PLDI", "POPL"},
	"cs.GR": {"SIGGRAPH", "Eurographics"},
}
