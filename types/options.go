package types

// Option is one choice of a form dropdown
type Option struct {
	Value string
	Label string
}

// Form dropdown choices
var (
	KindOptions = []Option{
		{Value: "report", Label: "Báo cáo"},
		{Value: "correspondence", Label: "Công văn"},
		{Value: "plan", Label: "Kế hoạch"},
		{Value: "announcement", Label: "Thông báo"},
		{Value: "decision", Label: "Quyết định"},
	}
	PriorityOptions = []Option{
		{Value: "normal", Label: "Thường"},
		{Value: "urgent", Label: "Khẩn"},
	}
	ReceivingMethodOptions = []Option{
		{Value: "letter", Label: "Giấy"},
		{Value: "email", Label: "Điện tử"},
	}
)

// HasValue reports whether value is one of the options
func HasValue(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// LabelOf returns the label of value, or value itself when unknown
func LabelOf(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
