package types

// Column is one table column: the document field it shows and its header
type Column struct {
	Key    string
	Header string
}

// ColumnSet is an ordered list of columns
type ColumnSet []Column

// ColumnRowNumber is the synthetic running-number column
const ColumnRowNumber = "stt"

// Headers are the Vietnamese column titles used on screen and in exports
var Headers = map[string]string{
	ColumnRowNumber:     "STT",
	"documentNumber":    "Số văn bản",
	"receivedDate":      "Ngày đến",
	"issuedDate":        "Ngày ban hành",
	"dueDate":           "Hạn xử lý",
	"referenceNumber":   "Số ký hiệu",
	"author":            "Nơi ban hành",
	"summary":           "Trích yếu",
	"priority":          "Độ khẩn",
	"type":              "Loại văn bản",
	"receivingMethod":   "Hình thức nhận",
	"processingOpinion": "Ý kiến xử lý",
	"internalRecipient": "Người nhận",
	"attachments":       "Tệp đính kèm",
	"status":            "Trạng thái",
}

// Columns builds a set from field keys
func Columns(keys ...string) ColumnSet {
	set := make(ColumnSet, len(keys))
	for i, k := range keys {
		h, ok := Headers[k]
		if !ok {
			h = k
		}
		set[i] = Column{Key: k, Header: h}
	}
	return set
}

// Keys returns the field keys in order
func (cs ColumnSet) Keys() []string {
	keys := make([]string, len(cs))
	for i, c := range cs {
		keys[i] = c.Key
	}
	return keys
}

// Headers returns the column titles in order
func (cs ColumnSet) Headers() []string {
	headers := make([]string, len(cs))
	for i, c := range cs {
		headers[i] = c.Header
	}
	return headers
}

var (
	incomingSearchColumns = Columns(ColumnRowNumber, "documentNumber", "receivedDate", "issuedDate",
		"dueDate", "referenceNumber", "author", "summary", "attachments")
	outgoingSearchColumns = Columns(ColumnRowNumber, "referenceNumber", "issuedDate", "author",
		"summary", "attachments")

	incomingWaitingColumns = Columns(ColumnRowNumber, "documentNumber", "receivedDate", "author",
		"priority", "dueDate", "summary", "attachments")
	outgoingWaitingColumns = Columns(ColumnRowNumber, "documentNumber", "issuedDate", "author",
		"summary", "attachments")
)

// SearchColumns returns the result columns of the search screen
func SearchColumns(t DocumentType) ColumnSet {
	if t == Outgoing {
		return outgoingSearchColumns
	}
	return incomingSearchColumns
}

// DashboardColumns returns the columns of one dashboard table. Finished
// tables also show who the document was handed to.
func DashboardColumns(t DocumentType, p Partition) ColumnSet {
	base := incomingWaitingColumns
	if t == Outgoing {
		base = outgoingWaitingColumns
	}
	if p == Finished {
		out := make(ColumnSet, 0, len(base)+1)
		out = append(out, base...)
		return append(out, Column{Key: "internalRecipient", Header: Headers["internalRecipient"]})
	}
	return base
}
