// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"fmt"

	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// nativeValue converts a CEL result into plain Go values, recursing into
// maps and lists.
func nativeValue(v ref.Val) (any, error) {
	switch val := v.(type) {
	case types.Null:
		return nil, nil
	case traits.Mapper:
		out := make(map[string]any)
		it := val.Iterator()
		for it.HasNext() == types.True {
			k := it.Next()
			key, ok := k.Value().(string)
			if !ok {
				return nil, fmt.Errorf("%w: map key %v is %T, not string", ErrInvalidResult, k.Value(), k.Value())
			}
			elem, err := nativeValue(val.Get(k))
			if err != nil {
				return nil, err
			}
			out[key] = elem
		}
		return out, nil
	case traits.Lister:
		size, ok := val.Size().(types.Int)
		if !ok {
			return nil, fmt.Errorf("%w: list has no size", ErrInvalidResult)
		}
		out := make([]any, 0, int(size))
		for i := types.Int(0); i < size; i++ {
			elem, err := nativeValue(val.Get(i))
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}
	return v.Value(), nil
}
