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

// Package pdfdoc is the minimal PDF object reader/writer the imposition
// pipeline needs: enough to pull page boxes, content streams and resources
// out of a source file, and enough to assemble a fresh one. It is not a
// general-purpose PDF library — no object streams, no cross-reference
// streams, no encryption support beyond detecting it, no incremental
// updates. A page that needs more than this is out of scope.
package pdfdoc

import (
	"bytes"
	"fmt"
	"sort"
)

// Name is a PDF name object, written as /Foo.
type Name string

// Ref is an indirect reference, "num gen R".
type Ref struct {
	Num int
	Gen int
}

// Dict is a PDF dictionary. Values are one of: nil, bool, int64, float64,
// string (a PDF literal string's decoded bytes), Name, Ref, Dict, Array.
type Dict map[string]interface{}

// Array is a PDF array.
type Array []interface{}

// stream pairs a dict with raw (already-encoded) stream bytes, used only
// while writing: the dict's /Length and /Filter are expected to already be
// set by the caller.
type stream struct {
	dict Dict
	data []byte
}

func writeValue(buf *bytes.Buffer, v interface{}) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int:
		fmt.Fprintf(buf, "%d", t)
	case int64:
		fmt.Fprintf(buf, "%d", t)
	case float64:
		fmt.Fprintf(buf, "%s", trimFloat(t))
	case string:
		buf.WriteByte('(')
		buf.WriteString(escapeLiteral(t))
		buf.WriteByte(')')
	case Name:
		buf.WriteByte('/')
		buf.WriteString(string(t))
	case Ref:
		fmt.Fprintf(buf, "%d %d R", t.Num, t.Gen)
	case Dict:
		writeDict(buf, t)
	case Array:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeValue(buf, e)
		}
		buf.WriteByte(']')
	default:
		fmt.Fprintf(buf, "%v", t)
	}
}

// writeDict writes keys in sorted order so output is deterministic, which
// makes the writer's own tests reproducible.
func writeDict(buf *bytes.Buffer, d Dict) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf.WriteString("<< ")
	for _, k := range keys {
		buf.WriteByte('/')
		buf.WriteString(k)
		buf.WriteByte(' ')
		writeValue(buf, d[k])
		buf.WriteByte(' ')
	}
	buf.WriteString(">>")
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	// Trim trailing zeros but keep at least one digit after the point.
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i++
	}
	return s[:i]
}

func escapeLiteral(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', ')', '\\':
			out = append(out, '\\', s[i])
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// DictValue looks up key in d, resolving nothing (callers that need ref
// resolution go through Source.resolve).
func DictValue(d Dict, key string) (interface{}, bool) {
	v, ok := d[key]
	return v, ok
}
