package arena

import (
	"strconv"
	"strings"
)

// Format renders the value at h in source-like notation: strings are
// quoted, arrays use brackets and tuples use braces.
func (a *Arena) Format(h Handle) string {
	var sb strings.Builder
	a.format(&sb, h)
	return sb.String()
}

func (a *Arena) format(sb *strings.Builder, h Handle) {
	switch a.PeekType(h) {
	case TagBool:
		sb.WriteString(strconv.FormatBool(a.PeekBool(h)))
	case TagChar:
		sb.WriteString(strconv.QuoteRune(a.PeekChar(h)))
	case TagInt:
		sb.WriteString(strconv.FormatInt(a.PeekInt(h), 10))
	case TagReal:
		s := strconv.FormatFloat(a.PeekReal(h), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		sb.WriteString(s)
	case TagUnit:
		sb.WriteString("()")
	case TagArray:
		if a.PeekSize(h) > 0 && a.IsString(h) {
			sb.WriteString(strconv.Quote(a.PeekString(h)))
			return
		}
		a.formatChildren(sb, h, '[', ']')
	case TagTuple:
		a.formatChildren(sb, h, '{', '}')
	case TagFunction:
		fn := a.PeekFunction(h)
		sb.WriteString("<func/")
		sb.WriteString(strconv.Itoa(fn.Remaining()))
		sb.WriteByte('>')
	case TagReference:
		sb.WriteString("<ref @")
		sb.WriteString(strconv.Itoa(int(a.PeekReference(h))))
		sb.WriteByte('>')
	default:
		sb.WriteString("<invalid>")
	}
}

func (a *Arena) formatChildren(sb *strings.Builder, h Handle, lb, rb byte) {
	sb.WriteByte(lb)
	for i, c := range a.Children(h) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		a.format(sb, c)
	}
	sb.WriteByte(rb)
}
