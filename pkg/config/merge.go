package config

import (
	"fmt"
	"reflect"
)

// MergeConfig 将 src 中的非零值覆盖到 dst 上并返回 dst
// 任一侧为 nil 时返回另一侧；切片整体替换，map 按键合并，结构体逐字段递归
// 注意：src 中的 false / 0 / "" 被视为未设置，无法覆盖 dst 的非零值
func MergeConfig[T any](dst, src *T) (*T, error) {
	switch {
	case dst == nil && src == nil:
		return nil, ErrBothNil
	case dst == nil:
		return src, nil
	case src == nil:
		return dst, nil
	}

	if err := merge(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem()); err != nil {
		return nil, err
	}
	return dst, nil
}

func merge(dst, src reflect.Value) error {
	if !src.IsValid() || src.IsZero() {
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		t := src.Type()
		if opaque(t) {
			dst.Set(src)
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if err := merge(dst.Field(i), src.Field(i)); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(dst.Type(), src.Len()))
		}
		iter := src.MapRange()
		for iter.Next() {
			cur := dst.MapIndex(iter.Key())
			if !cur.IsValid() {
				dst.SetMapIndex(iter.Key(), iter.Value())
				continue
			}
			// map 元素不可寻址，复制一份合并后写回
			tmp := reflect.New(dst.Type().Elem()).Elem()
			tmp.Set(cur)
			if err := merge(tmp, iter.Value()); err != nil {
				return err
			}
			dst.SetMapIndex(iter.Key(), tmp)
		}
	case reflect.Ptr:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return merge(dst.Elem(), src.Elem())
	default:
		if !dst.CanSet() {
			return fmt.Errorf("cannot set %s", dst.Type())
		}
		dst.Set(src)
	}
	return nil
}

// opaque 含未导出字段的结构体 (如 time.Time) 整体覆盖
func opaque(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			return true
		}
	}
	return false
}
