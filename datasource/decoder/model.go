package decoder

type Header struct {
	Name  string
	Value string
}

// Data is one request line of a requests file.
type Data struct {
	Tag     string
	Method  string
	Path    string
	Header  []Header
	Body    any // JSON wire value
	HasBody bool
}

func (d *Data) Reset() {
	d.Tag = ""
	d.Method = ""
	d.Path = ""
	clear(d.Header)
	d.Header = d.Header[:0]
	d.Body = nil
	d.HasBody = false
}
