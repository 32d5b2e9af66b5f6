package dawproject

import "encoding/xml"

// MetaData is the descriptive record stored beside the project graph.
// Empty fields are omitted from metadata.xml.
type MetaData struct {
	XMLName        xml.Name `xml:"MetaData"`
	Title          string   `xml:"Title,omitempty"`
	Artist         string   `xml:"Artist,omitempty"`
	Album          string   `xml:"Album,omitempty"`
	OriginalArtist string   `xml:"OriginalArtist,omitempty"`
	Composer       string   `xml:"Composer,omitempty"`
	Songwriter     string   `xml:"Songwriter,omitempty"`
	Producer       string   `xml:"Producer,omitempty"`
	Arranger       string   `xml:"Arranger,omitempty"`
	Year           string   `xml:"Year,omitempty"`
	Genre          string   `xml:"Genre,omitempty"`
	Copyright      string   `xml:"Copyright,omitempty"`
	Website        string   `xml:"Website,omitempty"`
	Comment        string   `xml:"Comment,omitempty"`
}
