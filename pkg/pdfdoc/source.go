/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pdfdoc

import (
	"bytes"
	"compress/zlib"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/geom"
)

// ErrEncrypted and ErrNoPages are the two structural failures OpenSource can
// return; callers match on these with errors.Is to map onto the pipeline's
// own error kinds instead of parsing message text.
var (
	ErrEncrypted = errors.New("pdfdoc: PDF is encrypted")
	ErrNoPages   = errors.New("pdfdoc: PDF has zero pages")
)

// SourcePage is one page extracted from a Source, boxes in PDF points.
type SourcePage struct {
	Num       int
	MediaBox  geom.Rectangle
	TrimBox   *geom.Rectangle
	BleedBox  *geom.Rectangle
	ArtBox    *geom.Rectangle
	Content   []byte
	Resources Dict
}

// Source is an opened, parsed PDF ready for page extraction.
type Source struct {
	data    []byte
	xref    map[int]int64
	trailer Dict
	cache   map[int]interface{}
	Pages   []*SourcePage
}

// OpenSource parses data's classic cross-reference table and trailer, walks
// the page tree, and extracts each page's boxes, decoded content stream and
// resource dictionary. Encrypted documents and documents using
// cross-reference streams (PDF 1.5+ object streams) are rejected: see
// ErrUnsupported.
func OpenSource(data []byte) (*Source, error) {
	s := &Source{data: data, xref: map[int]int64{}, cache: map[int]interface{}{}}

	startxref, err := findStartxref(data)
	if err != nil {
		return nil, err
	}

	trailer, err := s.readXrefChain(startxref)
	if err != nil {
		return nil, err
	}
	s.trailer = trailer

	if _, encrypted := trailer["Encrypt"]; encrypted {
		return nil, ErrEncrypted
	}

	rootRef, ok := trailer["Root"].(Ref)
	if !ok {
		return nil, errors.New("pdfdoc: trailer missing /Root")
	}
	rootVal, err := s.resolve(rootRef)
	if err != nil {
		return nil, errors.Wrap(err, "pdfdoc: resolving catalog")
	}
	root, ok := rootVal.(Dict)
	if !ok {
		return nil, errors.New("pdfdoc: catalog is not a dict")
	}
	pagesRef, ok := root["Pages"].(Ref)
	if !ok {
		return nil, errors.New("pdfdoc: catalog missing /Pages")
	}

	var pages []*SourcePage
	if err := s.walkPages(pagesRef, Dict{}, &pages); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	s.Pages = pages
	return s, nil
}

func findStartxref(data []byte) (int64, error) {
	tail := data
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	idx := strings.LastIndex(string(tail), "startxref")
	if idx < 0 {
		return 0, errors.New("pdfdoc: missing startxref")
	}
	p := newParser(tail, idx+len("startxref"))
	p.skipWS()
	n, isInt, err := p.parseNumber()
	if err != nil || !isInt {
		return 0, errors.New("pdfdoc: malformed startxref")
	}
	return int64(n), nil
}

// readXrefChain follows classic xref tables and their /Prev links, merging
// offsets with the first (most recent) occurrence winning. Returns the
// merged trailer (first trailer's keys win, falling back to older ones for
// keys it doesn't set).
func (s *Source) readXrefChain(offset int64) (Dict, error) {
	merged := Dict{}
	seen := map[int64]bool{}

	for offset != 0 {
		if seen[offset] {
			break
		}
		seen[offset] = true

		if int(offset) >= len(s.data) {
			return nil, errors.New("pdfdoc: startxref points past EOF")
		}
		p := newParser(s.data, int(offset))
		p.skipWS()
		if !p.matchKeyword("xref") {
			return nil, errors.Wrap(ErrUnsupported, "pdfdoc: cross-reference streams are not supported, only classic xref tables")
		}

		for {
			p.skipWS()
			save := p.pos
			first, isInt1, err1 := p.parseNumber()
			if err1 != nil || !isInt1 {
				p.pos = save
				break
			}
			p.skipWS()
			count, isInt2, err2 := p.parseNumber()
			if err2 != nil || !isInt2 {
				p.pos = save
				break
			}
			p.skipWS()
			for i := 0; i < int(count); i++ {
				entry := nextLine(p)
				fields := strings.Fields(entry)
				if len(fields) < 3 {
					continue
				}
				objNum := int(first) + i
				if _, exists := s.xref[objNum]; exists {
					continue
				}
				if fields[2] == "n" {
					off, err := strconv.ParseInt(fields[0], 10, 64)
					if err == nil {
						s.xref[objNum] = off
					}
				}
			}
		}

		p.skipWS()
		if !p.matchKeyword("trailer") {
			break
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, errors.Wrap(err, "pdfdoc: parsing trailer")
		}
		trailer, ok := val.(Dict)
		if !ok {
			return nil, errors.New("pdfdoc: trailer is not a dict")
		}
		for k, v := range trailer {
			if _, exists := merged[k]; !exists {
				merged[k] = v
			}
		}

		prevOffset := int64(0)
		if prev, ok := trailer["Prev"]; ok {
			if f, ok := prev.(int64); ok {
				prevOffset = f
			} else if f, ok := prev.(float64); ok {
				prevOffset = int64(f)
			}
		}
		offset = prevOffset
	}

	if len(merged) == 0 {
		return nil, errors.New("pdfdoc: no trailer found")
	}
	return merged, nil
}

func nextLine(p *parser) string {
	start := p.pos
	for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
		p.pos++
	}
	line := string(p.data[start:p.pos])
	for p.pos < len(p.data) && (p.data[p.pos] == '\n' || p.data[p.pos] == '\r') {
		p.pos++
	}
	return line
}

// resolve dereferences a Ref by parsing the indirect object at its xref
// offset, memoizing the result.
func (s *Source) resolve(ref Ref) (interface{}, error) {
	if v, ok := s.cache[ref.Num]; ok {
		return v, nil
	}
	offset, ok := s.xref[ref.Num]
	if !ok {
		return nil, errors.Errorf("pdfdoc: no xref entry for object %d", ref.Num)
	}
	p := newParser(s.data, int(offset))
	p.skipWS()
	if _, _, err := p.parseNumber(); err != nil {
		return nil, errors.Wrapf(err, "pdfdoc: object %d header", ref.Num)
	}
	p.skipWS()
	if _, _, err := p.parseNumber(); err != nil {
		return nil, errors.Wrapf(err, "pdfdoc: object %d header", ref.Num)
	}
	p.skipWS()
	if !p.matchKeyword("obj") {
		return nil, errors.Errorf("pdfdoc: object %d missing 'obj' keyword", ref.Num)
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, errors.Wrapf(err, "pdfdoc: parsing object %d", ref.Num)
	}
	s.cache[ref.Num] = val
	return val, nil
}

// resolveMaybe resolves v if it's a Ref, otherwise returns it unchanged.
func (s *Source) resolveMaybe(v interface{}) (interface{}, error) {
	if ref, ok := v.(Ref); ok {
		return s.resolve(ref)
	}
	return v, nil
}

// walkPages recursively descends the page tree starting at nodeRef,
// threading down inherited attributes (Resources, MediaBox, rotate) per the
// PDF spec's inheritance rules, appending leaf Page objects to *out.
func (s *Source) walkPages(nodeRef Ref, inherited Dict, out *[]*SourcePage) error {
	nodeVal, err := s.resolve(nodeRef)
	if err != nil {
		return err
	}
	node, ok := nodeVal.(Dict)
	if !ok {
		return errors.New("pdfdoc: page tree node is not a dict")
	}

	merged := Dict{}
	for k, v := range inherited {
		merged[k] = v
	}
	for _, key := range []string{"Resources", "MediaBox", "Rotate"} {
		if v, ok := node[key]; ok {
			merged[key] = v
		}
	}

	if typ, _ := node["Type"].(Name); typ == "Page" || node["Kids"] == nil {
		return s.extractPage(node, merged, out)
	}

	kidsVal, ok := node["Kids"]
	if !ok {
		return errors.New("pdfdoc: page tree node missing /Kids")
	}
	kids, ok := kidsVal.(Array)
	if !ok {
		return errors.New("pdfdoc: /Kids is not an array")
	}
	for _, k := range kids {
		ref, ok := k.(Ref)
		if !ok {
			continue
		}
		if err := s.walkPages(ref, merged, out); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) extractPage(page Dict, inherited Dict, out *[]*SourcePage) error {
	mediaVal, ok := page["MediaBox"]
	if !ok {
		mediaVal, ok = inherited["MediaBox"]
	}
	if !ok {
		return errors.New("pdfdoc: page has no MediaBox")
	}
	mediaBox, err := s.rectFromValue(mediaVal)
	if err != nil {
		return errors.Wrap(err, "pdfdoc: MediaBox")
	}

	sp := &SourcePage{Num: len(*out) + 1, MediaBox: *mediaBox}
	sp.TrimBox = s.optionalBox(page, "TrimBox")
	sp.BleedBox = s.optionalBox(page, "BleedBox")
	sp.ArtBox = s.optionalBox(page, "ArtBox")

	resVal, ok := page["Resources"]
	if !ok {
		resVal = inherited["Resources"]
	}
	if resVal != nil {
		resolved, err := s.resolveMaybe(resVal)
		if err == nil {
			if d, ok := resolved.(Dict); ok {
				sp.Resources = d
			}
		}
	}
	if sp.Resources == nil {
		sp.Resources = Dict{}
	}

	content, err := s.pageContent(page)
	if err != nil {
		return errors.Wrap(err, "pdfdoc: content stream")
	}
	sp.Content = content

	*out = append(*out, sp)
	return nil
}

func (s *Source) optionalBox(page Dict, key string) *geom.Rectangle {
	v, ok := page[key]
	if !ok {
		return nil
	}
	r, err := s.rectFromValue(v)
	if err != nil {
		return nil
	}
	return r
}

func (s *Source) rectFromValue(v interface{}) (*geom.Rectangle, error) {
	resolved, err := s.resolveMaybe(v)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(Array)
	if !ok || len(arr) != 4 {
		return nil, errors.New("pdfdoc: expected a 4-element rectangle array")
	}
	vals := make([]float64, 4)
	for i, e := range arr {
		re, err := s.resolveMaybe(e)
		if err != nil {
			return nil, err
		}
		vals[i] = toFloat(re)
	}
	llx, lly, urx, ury := vals[0], vals[1], vals[2], vals[3]
	if urx < llx {
		llx, urx = urx, llx
	}
	if ury < lly {
		lly, ury = ury, lly
	}
	r := geom.NewRectangle(llx, lly, urx-llx, ury-lly)
	return &r, nil
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}

// pageContent resolves /Contents (a single stream ref or an array of them),
// concatenating decoded bytes with a separating newline.
func (s *Source) pageContent(page Dict) ([]byte, error) {
	contentsVal, ok := page["Contents"]
	if !ok {
		return nil, nil
	}

	var refs []Ref
	switch t := contentsVal.(type) {
	case Ref:
		refs = []Ref{t}
	case Array:
		for _, e := range t {
			if ref, ok := e.(Ref); ok {
				refs = append(refs, ref)
			}
		}
	}

	var buf bytes.Buffer
	for _, ref := range refs {
		val, err := s.resolve(ref)
		if err != nil {
			return nil, err
		}
		so, ok := val.(StreamObject)
		if !ok {
			continue
		}
		decoded, err := decodeStream(so)
		if err != nil {
			return nil, err
		}
		buf.Write(decoded)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// decodeStream applies FlateDecode when the stream's /Filter names it.
// Other filters (DCTDecode, CCITTFaxDecode, etc.) pass through undecoded:
// they're used for image XObjects, never for page content streams in
// practice, so leaving them encoded here never affects imposition geometry.
func decodeStream(so StreamObject) ([]byte, error) {
	filter, _ := so.Dict["Filter"]
	if !usesFlate(filter) {
		return so.Data, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(so.Data))
	if err != nil {
		return nil, errors.Wrap(err, "pdfdoc: FlateDecode")
	}
	defer r.Close()
	return io.ReadAll(r)
}

func usesFlate(filter interface{}) bool {
	switch t := filter.(type) {
	case Name:
		return t == "FlateDecode"
	case Array:
		for _, e := range t {
			if n, ok := e.(Name); ok && n == "FlateDecode" {
				return true
			}
		}
	}
	return false
}
