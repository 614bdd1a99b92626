package enrichment

import (
	"encoding/json"
	"strconv"
	"strings"

	"flavorlab-enrichment/internal/pkg/common"
)

// Value 屬性值，僅可能是 Absent、Scalar、Sequence、Mapping 四種之一
type Value interface {
	isValue()
}

// Absent 欄位不存在
type Absent struct{}

// Scalar 純量值（字串、數字、布林或 null）
type Scalar struct {
	Text   string
	Number bool
	Bool   bool
	Null   bool
}

// Sequence 有序序列
type Sequence []Value

// Mapping 鍵值對映
type Mapping map[string]Value

func (Absent) isValue()   {}
func (Scalar) isValue()   {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}

// String 將純量轉為字串，null 視為空字串
func (s Scalar) String() string {
	if s.Null {
		return ""
	}
	return s.Text
}

// Field 取得映射中的欄位，不存在時回傳 Absent
func (m Mapping) Field(name string) Value {
	if v, ok := m[name]; ok && v != nil {
		return v
	}
	return Absent{}
}

// Attributes 食材的自由格式屬性包
type Attributes Mapping

// Field 取得屬性欄位，不存在時回傳 Absent
func (a Attributes) Field(name string) Value {
	return Mapping(a).Field(name)
}

// UnmarshalJSON 寬鬆解析屬性包，非物件的內容一律視為空屬性
func (a *Attributes) UnmarshalJSON(data []byte) error {
	attrs, err := ParseAttributes(data)
	if err != nil {
		return err
	}
	*a = attrs
	return nil
}

// MarshalJSON 以原始 JSON 形式輸出屬性包
func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(toAny(Mapping(a)))
}

// ParseAttributes 解析 JSON 屬性包；空白內容或非物件回傳空屬性，
// 只有語法錯誤才會回傳 error
func ParseAttributes(data []byte) (Attributes, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Attributes{}, nil
	}

	var raw interface{}
	if err := common.ParseJSONBytes(data, &raw); err != nil {
		return Attributes{}, err
	}

	if m, ok := FromAny(raw).(Mapping); ok {
		return Attributes(m), nil
	}
	return Attributes{}, nil
}

// FromAny 將解碼後的 JSON/YAML 值轉為 Value
func FromAny(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Scalar{Null: true}
	case string:
		return Scalar{Text: v}
	case json.Number:
		return Scalar{Text: v.String(), Number: true}
	case bool:
		return Scalar{Text: strconv.FormatBool(v), Bool: true}
	case float64:
		return Scalar{Text: strconv.FormatFloat(v, 'f', -1, 64), Number: true}
	case int:
		return Scalar{Text: strconv.Itoa(v), Number: true}
	case int64:
		return Scalar{Text: strconv.FormatInt(v, 10), Number: true}
	case map[interface{}]interface{}:
		m := make(Mapping, len(v))
		for key, item := range v {
			m[render(FromAny(key))] = FromAny(item)
		}
		return m
	case []interface{}:
		seq := make(Sequence, 0, len(v))
		for _, item := range v {
			seq = append(seq, FromAny(item))
		}
		return seq
	case map[string]interface{}:
		m := make(Mapping, len(v))
		for key, item := range v {
			m[key] = FromAny(item)
		}
		return m
	default:
		return Absent{}
	}
}

// render 將任意值轉為字串；序列與映射以精簡 JSON 呈現
func render(v Value) string {
	switch val := v.(type) {
	case Scalar:
		return val.String()
	case Sequence, Mapping:
		data, err := json.Marshal(toAny(val))
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

func toAny(v Value) interface{} {
	switch val := v.(type) {
	case Scalar:
		switch {
		case val.Null:
			return nil
		case val.Number:
			return json.Number(val.Text)
		case val.Bool:
			return val.Text == "true"
		}
		return val.Text
	case Sequence:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			out = append(out, toAny(item))
		}
		return out
	case Mapping:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = toAny(item)
		}
		return out
	default:
		return nil
	}
}
