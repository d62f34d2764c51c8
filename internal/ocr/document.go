package ocr

// Word is a single OCR token with absolute pixel geometry. Conf is the raw
// engine confidence in 0..100, nil when the engine reported none.
type Word struct {
	Text   string   `json:"text"`
	Left   int      `json:"left"`
	Top    int      `json:"top"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Conf   *float64 `json:"conf"`
	XRel   float64  `json:"x_rel"`
	YRel   float64  `json:"y_rel"`
	WRel   float64  `json:"w_rel"`
	HRel   float64  `json:"h_rel"`
}

// Line groups words that tesseract placed on the same text line. Pages read
// from embedded PDF text synthesize lines without word boxes.
type Line struct {
	LineText string `json:"line_text"`
	Words    []Word `json:"words"`
}

type Page struct {
	PageNumber int     `json:"page_number"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	DPI        int     `json:"dpi"`
	CoordUnit  string  `json:"coord_unit"`
	Confidence float64 `json:"confidence"`
	Lines      []Line  `json:"lines"`
}

// Result is the structured half of a Document.
type Result struct {
	PagesStructure []Page         `json:"pages_structure"`
	Metadata       map[string]any `json:"metadata"`
}

// Document is the full output of processing one PDF. Built once, immutable
// afterwards.
type Document struct {
	OCRID   string `json:"ocrId"`
	OCRText string `json:"ocrText"`
	Result  Result `json:"ocrResult"`
	Pages   int    `json:"pages"`
}
