package evaluator

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// toValue converts the value at h into a host value. Non-empty character
// arrays become strings; the empty array stays an array.
func (e *Evaluator) toValue(h arena.Handle) (functions.Value, error) {
	a := e.arena
	switch tag := a.PeekType(h); tag {
	case arena.TagBool:
		return functions.Bool(a.PeekBool(h)), nil
	case arena.TagChar:
		return functions.Char(a.PeekChar(h)), nil
	case arena.TagInt:
		return functions.Int(a.PeekInt(h)), nil
	case arena.TagReal:
		return functions.Real(a.PeekReal(h)), nil
	case arena.TagUnit:
		return functions.Unit(), nil
	case arena.TagFunction:
		return functions.Value{Kind: functions.KindFunction, Int: int64(a.PeekFunction(h).Remaining())}, nil
	case arena.TagReference:
		return functions.Value{Kind: functions.KindReference, Int: int64(a.PeekReference(h))}, nil
	case arena.TagArray, arena.TagTuple:
		if tag == arena.TagArray && a.PeekSize(h) > 0 && a.IsString(h) {
			return functions.String(a.PeekString(h)), nil
		}
		kids := a.Children(h)
		items := make([]functions.Value, len(kids))
		for i, k := range kids {
			v, err := e.toValue(k)
			if err != nil {
				return functions.Value{}, err
			}
			items[i] = v
		}
		if tag == arena.TagTuple {
			return functions.Tuple(items...), nil
		}
		return functions.Array(items...), nil
	default:
		return functions.Value{}, types.Errorf(types.ErrInternal, types.SubsystemForeign, "cannot convert value of type %s", tag)
	}
}

// fromValue pushes a host value onto the arena. Arrays must be homogeneous;
// functions and references cannot cross the boundary in this direction. On
// failure nothing is left pushed.
func (e *Evaluator) fromValue(v functions.Value) (arena.Handle, error) {
	a := e.arena
	switch v.Kind {
	case functions.KindUnit:
		return a.PushUnit(), nil
	case functions.KindBool:
		return a.PushBool(v.Bool), nil
	case functions.KindChar:
		return a.PushChar(v.Char), nil
	case functions.KindInt:
		return a.PushInt(v.Int), nil
	case functions.KindReal:
		return a.PushReal(v.Real), nil
	case functions.KindString:
		return a.PushString(v.Str), nil
	case functions.KindArray, functions.KindTuple:
		tag := arena.TagArray
		if v.Kind == functions.KindTuple {
			tag = arena.TagTuple
		}
		b := a.BeginCompound(tag)
		for _, it := range v.Items {
			if _, err := e.fromValue(it); err != nil {
				b.Abort()
				return 0, err
			}
		}
		h := b.Commit()
		if tag == arena.TagArray && !a.Homogeneous(h) {
			a.Truncate(h)
			return 0, types.NewError(types.ErrHeterogeneousArray, types.SubsystemForeign,
				"array elements must all have the same shape: "+v.String())
		}
		return h, nil
	case functions.KindFunction, functions.KindReference:
		return 0, types.Errorf(types.ErrUnsupportedForeign, types.SubsystemForeign, "%s values cannot be passed into the script", v.Kind)
	}
	return 0, types.Errorf(types.ErrUnsupportedForeign, types.SubsystemForeign, "unknown value kind %d", v.Kind)
}
