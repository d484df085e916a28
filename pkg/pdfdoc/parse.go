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
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// ErrUnsupported flags a well-formed PDF feature this reader deliberately
// does not implement (cross-reference streams, object streams).
var ErrUnsupported = errors.New("pdfdoc: unsupported PDF feature")

type parser struct {
	data []byte
	pos  int
}

func newParser(data []byte, pos int) *parser {
	return &parser{data: data, pos: pos}
}

func isWhite(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (p *parser) skipWS() {
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if b == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		if !isWhite(b) {
			return
		}
		p.pos++
	}
}

func (p *parser) peekByte() (byte, bool) {
	if p.pos >= len(p.data) {
		return 0, false
	}
	return p.data[p.pos], true
}

// parseValue parses the next PDF object: dict, array, name, string
// (literal or hex), number, reference, boolean or null.
func (p *parser) parseValue() (interface{}, error) {
	p.skipWS()
	b, ok := p.peekByte()
	if !ok {
		return nil, errors.New("pdfdoc: unexpected EOF")
	}

	switch {
	case b == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case b == '<':
		return p.parseHexString()
	case b == '(':
		return p.parseLiteralString()
	case b == '/':
		return p.parseName()
	case b == '[':
		return p.parseArray()
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		return p.parseNumberOrRef()
	default:
		return p.parseKeyword()
	}
}

func (p *parser) parseName() (Name, error) {
	p.pos++ // consume '/'
	start := p.pos
	for p.pos < len(p.data) && !isWhite(p.data[p.pos]) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	return Name(p.data[start:p.pos]), nil
}

func (p *parser) parseDict() (interface{}, error) {
	p.pos += 2 // consume '<<'
	d := Dict{}
	for {
		p.skipWS()
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			break
		}
		if p.pos >= len(p.data) {
			return nil, errors.New("pdfdoc: unterminated dict")
		}
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		d[string(name)] = val
	}

	// A dict immediately followed by "stream" is a stream object body.
	save := p.pos
	p.skipWS()
	if p.matchKeyword("stream") {
		return p.parseStreamBody(d)
	}
	p.pos = save
	return d, nil
}

func (p *parser) matchKeyword(kw string) bool {
	n := len(kw)
	if p.pos+n > len(p.data) || string(p.data[p.pos:p.pos+n]) != kw {
		return false
	}
	p.pos += n
	return true
}

// StreamObject carries a stream's dict plus its raw (still-encoded) bytes.
type StreamObject struct {
	Dict Dict
	Data []byte
}

func (p *parser) parseStreamBody(d Dict) (interface{}, error) {
	// After "stream" comes CRLF or LF, then exactly /Length bytes.
	if p.pos < len(p.data) && p.data[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
	}
	length, ok := intFromDictValue(d["Length"])
	start := p.pos
	var end int
	if ok && start+length <= len(p.data) {
		end = start + length
		// Sanity check: "endstream" should follow shortly after.
		probe := end
		for probe < len(p.data) && isWhite(p.data[probe]) {
			probe++
		}
		if probe+9 > len(p.data) || string(p.data[probe:probe+9]) != "endstream" {
			end = p.findEndstream(start)
		}
	} else {
		end = p.findEndstream(start)
	}
	data := p.data[start:end]
	p.pos = end
	p.skipWS()
	p.matchKeyword("endstream")
	return StreamObject{Dict: d, Data: data}, nil
}

func (p *parser) findEndstream(from int) int {
	idx := indexFrom(p.data, from, "endstream")
	if idx < 0 {
		return len(p.data)
	}
	end := idx
	for end > from && isWhite(p.data[end-1]) {
		end--
	}
	return end
}

func intFromDictValue(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

func (p *parser) parseArray() (interface{}, error) {
	p.pos++ // consume '['
	arr := Array{}
	for {
		p.skipWS()
		if b, ok := p.peekByte(); ok && b == ']' {
			p.pos++
			break
		}
		if p.pos >= len(p.data) {
			return nil, errors.New("pdfdoc: unterminated array")
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func (p *parser) parseLiteralString() (interface{}, error) {
	p.pos++ // consume '('
	depth := 1
	out := make([]byte, 0, 16)
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		switch b {
		case '\\':
			p.pos++
			if p.pos >= len(p.data) {
				break
			}
			esc := p.data[p.pos]
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '(', ')', '\\':
				out = append(out, esc)
			default:
				out = append(out, esc)
			}
			p.pos++
			continue
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				p.pos++
				return string(out), nil
			}
			out = append(out, b)
		default:
			out = append(out, b)
		}
		p.pos++
	}
	return string(out), errors.New("pdfdoc: unterminated literal string")
}

func (p *parser) parseHexString() (interface{}, error) {
	p.pos++ // consume '<'
	start := p.pos
	for p.pos < len(p.data) && p.data[p.pos] != '>' {
		p.pos++
	}
	hex := p.data[start:p.pos]
	p.pos++ // consume '>'
	out := make([]byte, 0, len(hex)/2+1)
	var hi byte
	have := false
	for _, c := range hex {
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			continue
		}
		if !have {
			hi = v
			have = true
		} else {
			out = append(out, hi<<4|v)
			have = false
		}
	}
	if have {
		out = append(out, hi<<4)
	}
	return string(out), nil
}

func (p *parser) parseNumberOrRef() (interface{}, error) {
	num, isInt, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	if isInt {
		save := p.pos
		p.skipWS()
		if gen, isGenInt, ok := p.tryParseInt(); ok && isGenInt {
			save2 := p.pos
			p.skipWS()
			if b, ok2 := p.peekByte(); ok2 && b == 'R' {
				next := p.pos + 1
				if next >= len(p.data) || isWhite(p.data[next]) || isDelim(p.data[next]) {
					p.pos = next
					return Ref{Num: int(num), Gen: gen}, nil
				}
			}
			p.pos = save2
		}
		p.pos = save
		return int64(num), nil
	}
	return num, nil
}

func (p *parser) tryParseInt() (int, bool, bool) {
	save := p.pos
	n, isInt, err := p.parseNumber()
	if err != nil || !isInt {
		p.pos = save
		return 0, false, false
	}
	return int(n), true, true
}

func (p *parser) parseNumber() (float64, bool, error) {
	start := p.pos
	if b, ok := p.peekByte(); ok && (b == '+' || b == '-') {
		p.pos++
	}
	isInt := true
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if b >= '0' && b <= '9' {
			p.pos++
			continue
		}
		if b == '.' {
			isInt = false
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, false, errors.New("pdfdoc: expected number")
	}
	f, err := strconv.ParseFloat(string(p.data[start:p.pos]), 64)
	if err != nil {
		return 0, false, errors.Wrap(err, "pdfdoc: bad number")
	}
	return f, isInt, nil
}

func (p *parser) parseKeyword() (interface{}, error) {
	if p.matchKeyword("true") {
		return true, nil
	}
	if p.matchKeyword("false") {
		return false, nil
	}
	if p.matchKeyword("null") {
		return nil, nil
	}
	return nil, fmt.Errorf("pdfdoc: unrecognized token at offset %d", p.pos)
}

func indexFrom(data []byte, from int, needle string) int {
	if from < 0 || from > len(data) {
		return -1
	}
	n := len(needle)
	for i := from; i+n <= len(data); i++ {
		if string(data[i:i+n]) == needle {
			return i
		}
	}
	return -1
}
