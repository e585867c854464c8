package europepmc

// searchResponse is the top level of the Europe PMC REST search reply.
type searchResponse struct {
	ResultList struct {
		Result []article `json:"result"`
	} `json:"resultList"`
}

// article is one result in the search reply.
type article struct {
	ID                   string `json:"id"`
	Source               string `json:"source"`
	DOI                  string `json:"doi"`
	Title                string `json:"title"`
	AuthorString         string `json:"authorString"`
	JournalTitle         string `json:"journalTitle"`
	FirstPublicationDate string `json:"firstPublicationDate"`
	AbstractText         string `json:"abstractText"`
	FullTextURLList      struct {
		FullTextURL []fullTextURL `json:"fullTextUrl"`
	} `json:"fullTextUrlList"`
}

// fullTextURL is one full text link of an article.
type fullTextURL struct {
	AvailabilityCode string `json:"availabilityCode"`
	DocumentStyle    string `json:"documentStyle"`
	URL              string `json:"url"`
}
