package transcript

// Cell is one table cell as produced by the table extractor. Only Text is
// interpreted; the geometry is kept so tabula output round-trips.
type Cell struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Text   string  `json:"text"`
}

// Row is an ordered list of cells.
type Row []Cell

// Texts returns the text of every cell in order.
func (r Row) Texts() []string {
	texts := make([]string, len(r))
	for i, c := range r {
		texts[i] = c.Text
	}
	return texts
}

// Table mirrors one table of tabula's JSON output.
type Table struct {
	ExtractionMethod string  `json:"extraction_method"`
	PageNumber       int     `json:"page_number"`
	Top              float64 `json:"top"`
	Left             float64 `json:"left"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Right            float64 `json:"right"`
	Bottom           float64 `json:"bottom"`
	Data             []Row   `json:"data"`
}

// TablesFromStrings wraps plain cell texts (tables → rows → cells) into tables.
func TablesFromStrings(raw [][][]string) []Table {
	tables := make([]Table, len(raw))
	for i, rows := range raw {
		data := make([]Row, len(rows))
		for j, cells := range rows {
			row := make(Row, len(cells))
			for k, text := range cells {
				row[k] = Cell{Text: text}
			}
			data[j] = row
		}
		tables[i] = Table{PageNumber: i + 1, Data: data}
	}
	return tables
}
