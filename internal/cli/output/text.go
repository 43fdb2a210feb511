package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/yndnr/stackkv-go/internal/server/kvserver"
)

// TextFormatter renders data for people.
//
// Protocol responses print the value of a successful GET, the message of
// other replies, and "(error) ..." for failures. Other values print as
// aligned "key  value" lines with nested fields joined by dots.
type TextFormatter struct{}

// Format formats data as text.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case kvserver.Response:
		_, err := fmt.Fprintln(w, responseText(v))
		return err
	case *kvserver.Response:
		_, err := fmt.Fprintln(w, responseText(*v))
		return err
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	}

	generic, err := toGeneric(data)
	if err != nil {
		return err
	}

	rows := flatten("", generic, nil)
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func responseText(r kvserver.Response) string {
	switch {
	case !r.OK():
		return "(error) " + r.Mesg
	case r.Result != nil:
		return strconv.Quote(*r.Result)
	case r.Mesg != "":
		return r.Mesg
	default:
		return "OK"
	}
}

func flatten(prefix string, v any, rows [][2]string) [][2]string {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			return append(rows, [2]string{prefix, "{}"})
		}
		for k, child := range t {
			rows = flatten(join(prefix, k), child, rows)
		}
		return rows
	case []any:
		if len(t) == 0 {
			return append(rows, [2]string{prefix, "[]"})
		}
		for i, child := range t {
			rows = flatten(join(prefix, strconv.Itoa(i)), child, rows)
		}
		return rows
	default:
		if prefix == "" {
			prefix = "value"
		}
		return append(rows, [2]string{prefix, scalar(t)})
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case float64:
		return strings.TrimSuffix(strconv.FormatFloat(t, 'f', -1, 64), ".0")
	default:
		return fmt.Sprint(t)
	}
}
