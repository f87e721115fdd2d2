// Package migrate converts legacy photo and user records into DynamoDB
// batch-write documents and submits them in chunks.
package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dmitrijs2005/photoshare/internal/dynamox"
)

// Attribute is one typed attribute value as written in batch-write JSON,
// e.g. {"N": "36"} or {"S": "cat.jpg"}. Exactly one field is set.
type Attribute struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
}

func S(v string) Attribute { return Attribute{S: &v} }
func N(v string) Attribute { return Attribute{N: &v} }

// Item maps attribute names to typed values.
type Item map[string]Attribute

type PutRequest struct {
	Item Item `json:"Item"`
}

type WriteRequest struct {
	PutRequest *PutRequest `json:"PutRequest"`
}

// Document is a batch-write file: table name to write requests.
type Document map[string][]WriteRequest

// Text accepts a JSON string or number, so exported ids can be either.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*t = Text(n.String())
	return nil
}

// toSDK converts an item for the DynamoDB client. Number values are
// checked here so a bad record fails before anything is sent.
func (it Item) toSDK() (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(it))
	for name, a := range it {
		switch {
		case a.S != nil && a.N == nil:
			out[name] = dynamox.S(*a.S)
		case a.N != nil && a.S == nil:
			if !isNumber(*a.N) {
				return nil, fmt.Errorf("attribute %s: %q is not a number", name, *a.N)
			}
			out[name] = dynamox.N(*a.N)
		default:
			return nil, fmt.Errorf("attribute %s: exactly one of S or N must be set", name)
		}
	}
	return out, nil
}

func (r WriteRequest) toSDK() (types.WriteRequest, error) {
	if r.PutRequest == nil || len(r.PutRequest.Item) == 0 {
		return types.WriteRequest{}, fmt.Errorf("write request without PutRequest item")
	}
	item, err := r.PutRequest.Item.toSDK()
	if err != nil {
		return types.WriteRequest{}, err
	}
	return types.WriteRequest{PutRequest: &types.PutRequest{Item: item}}, nil
}

// decimalNumber is the number syntax DynamoDB accepts: plain decimal digits
// with an optional sign, fraction and exponent.
var decimalNumber = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)

func isNumber(v string) bool {
	return decimalNumber.MatchString(v)
}

// ReadDocument parses a batch-write document.
func ReadDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode batch document: %w", err)
	}
	return d, nil
}

// WriteDocument writes d as indented JSON.
func WriteDocument(w io.Writer, d Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(d)
}

// Table returns the requests of the document's only table. A document
// naming several tables is rejected.
func (d Document) Table() (string, []WriteRequest, error) {
	if len(d) != 1 {
		names := make([]string, 0, len(d))
		for k := range d {
			names = append(names, k)
		}
		sort.Strings(names)
		return "", nil, fmt.Errorf("expected exactly one table in document, found %d %v", len(d), names)
	}
	for name, reqs := range d {
		return name, reqs, nil
	}
	return "", nil, nil
}
