package prestashop

import (
	"bytes"
	"encoding/json"
)

type nameKind int

const (
	nameUnresolved nameKind = iota
	namePlain               // "name": "Minorista"
	nameList                // "name": [{"id":"1","value":"Minorista"}] o ["Minorista"]
	nameLanguage            // "name": {"language": [{"value":"Minorista"}]} o {"language": {...}}
)

// LocalizedName nombre multi-idioma tal como lo emite PrestaShop según la configuración
// de idiomas: texto plano, lista de valores localizados u objeto con "language".
// Las tres formas se conservan; Resolve siempre toma el primer valor.
type LocalizedName struct {
	kind   nameKind
	values []string
}

// PlainName nombre como texto plano.
func PlainName(s string) LocalizedName {
	return LocalizedName{kind: namePlain, values: []string{s}}
}

// ListName nombre como lista de valores localizados.
func ListName(values ...string) LocalizedName {
	return LocalizedName{kind: nameList, values: values}
}

// LanguageName nombre como objeto anidado con lista "language".
func LanguageName(values ...string) LocalizedName {
	return LocalizedName{kind: nameLanguage, values: values}
}

// Resolve devuelve el nombre visible o "" si no hay ninguno resoluble.
func (n LocalizedName) Resolve() string {
	switch n.kind {
	case namePlain, nameList, nameLanguage:
		if len(n.values) > 0 {
			return n.values[0]
		}
	}
	return ""
}

// UnmarshalJSON nunca falla: una forma desconocida queda sin resolver y el
// llamador aplica el nombre de reemplazo.
func (n *LocalizedName) UnmarshalJSON(data []byte) error {
	*n = LocalizedName{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			*n = PlainName(s)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil && len(items) > 0 {
			*n = ListName(localizedValues(items)...)
		}
	case '{':
		var obj struct {
			Language json.RawMessage `json:"language"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil || len(obj.Language) == 0 {
			return nil
		}
		lang := bytes.TrimSpace(obj.Language)
		var items []json.RawMessage
		if len(lang) > 0 && lang[0] == '[' {
			if err := json.Unmarshal(lang, &items); err != nil {
				return nil
			}
		} else {
			items = []json.RawMessage{lang}
		}
		if len(items) > 0 {
			*n = LanguageName(objectValues(items)...)
		}
	}
	return nil
}

// localizedValues acepta elementos {"value": ...} o strings sueltos.
func localizedValues(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, raw := range items {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, objectValue(raw))
	}
	return out
}

// objectValues solo acepta elementos {"value": ...}.
func objectValues(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, raw := range items {
		out = append(out, objectValue(raw))
	}
	return out
}

func objectValue(raw json.RawMessage) string {
	var obj struct {
		Value flexString `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return string(obj.Value)
}
