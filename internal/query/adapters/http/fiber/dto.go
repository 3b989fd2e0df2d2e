package fiber

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RangeRequest bounds a query, both ends inclusive, in unix milliseconds.
type RangeRequest struct {
	From int64 `json:"from" example:"1765065600000"`
	To   int64 `json:"to" example:"1765151999999"`
}

// MatchRequest is the {text,isRe} filter form.
type MatchRequest struct {
	Text string `json:"text" example:"/blog"`
	IsRe bool   `json:"isRe" example:"false"`
}

// SelectRequest is the keyed filter form; at most one field may be set.
type SelectRequest struct {
	Exact *string `json:"exact,omitempty" example:"/blog"`
	Re    *string `json:"re,omitempty"`
	Glob  *string `json:"glob,omitempty"`
}

type QueryRequest struct {
	Domain   string        `json:"domain" example:"example.com"`
	Range    RangeRequest  `json:"range"`
	Metrics  []string      `json:"metrics" example:"views,visitors"`
	Property string        `json:"property" example:"page"`
	Match    *MatchRequest `json:"match,omitempty"`
}

type PropsRequest struct {
	Domain string       `json:"domain" example:"example.com"`
	Range  RangeRequest `json:"range"`
	Props  PropsSpec    `json:"props" swaggertype:"object"`
}

// PropsSpec is the property -> metric -> select mapping of a props request,
// kept in the order the client wrote it.
type PropsSpec []PropSpec

type PropSpec struct {
	Property string
	Metrics  []MetricSpec
}

type MetricSpec struct {
	Metric string
	Select SelectRequest
}

func (p *PropsSpec) UnmarshalJSON(data []byte) error {
	var out PropsSpec
	err := decodeObject(data, func(prop string, raw json.RawMessage) error {
		spec := PropSpec{Property: prop}
		err := decodeObject(raw, func(metric string, raw json.RawMessage) error {
			var sel SelectRequest
			if !isNull(raw) {
				if err := json.Unmarshal(raw, &sel); err != nil {
					return fmt.Errorf("props.%s.%s: %w", prop, metric, err)
				}
			}
			spec.Metrics = append(spec.Metrics, MetricSpec{Metric: metric, Select: sel})
			return nil
		})
		if err != nil {
			return err
		}
		out = append(out, spec)
		return nil
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}

var errNotObject = errors.New("expected a JSON object")

// decodeObject walks the members of a JSON object in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	if isNull(data) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func isNull(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null"
}

// orderedObject marshals as a JSON object whose members keep slice order.
type orderedObject []member

type member struct {
	Key   string
	Value any
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type PointResponse struct {
	Timestamp int64   `json:"timestamp" example:"1765072800000"`
	Value     float64 `json:"value" example:"1"`
}

type MetricResultResponse struct {
	Metric string `json:"metric" example:"views"`
	// Values maps each observed property value to its series.
	Values orderedObject `json:"values" swaggertype:"object"`
}

type QueryResponse struct {
	Elapsed string                 `json:"elapsed" example:"1.52ms"`
	Result  []MetricResultResponse `json:"result"`
}

type PropsResponse struct {
	Elapsed    string  `json:"elapsed" example:"2.1ms"`
	Timestamps []int64 `json:"timestamps"`
	// Props nests property -> metric -> value -> numbers aligned with Timestamps.
	Props orderedObject `json:"props" swaggertype:"object"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_query"`
	Message string `json:"message" example:"invalid query: unknown metric"`
}
