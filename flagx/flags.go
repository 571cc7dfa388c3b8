// Package flagx binds cobra flags to tagged option structs.
//
//	type issueOptions struct {
//	    Email    string        `flag:"email,e" usage:"account email" required:"true"`
//	    TTL      time.Duration `flag:"ttl" usage:"override access token TTL"`
//	    JSON     bool          `flag:"json" usage:"print JSON"`
//	}
//
//	var opts issueOptions
//	flagx.MustBind(cmd, &opts)
//	...
//	if err := flagx.Parse(cmd, &opts); err != nil { ... }
package flagx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrNotStructPointer is returned when the target is not a pointer to struct
var ErrNotStructPointer = errors.New("flagx: target must be a pointer to struct")

var durationType = reflect.TypeOf(time.Duration(0))

type field struct {
	index    int
	name     string
	short    string
	usage    string
	def      string
	required bool
}

func fields(target any) (reflect.Value, []field, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, ErrNotStructPointer
	}
	v = v.Elem()
	t := v.Type()

	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("flag")
		if tag == "" || !sf.IsExported() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, field{
			index:    i,
			name:     name,
			short:    short,
			usage:    sf.Tag.Get("usage"),
			def:      sf.Tag.Get("default"),
			required: sf.Tag.Get("required") == "true",
		})
	}
	return v, out, nil
}

// Bind registers one local flag per tagged field of target. Defaults come
// from the `default` tag, or from the field's current value when the tag is
// absent.
func Bind(cmd *cobra.Command, target any) error {
	v, fs, err := fields(target)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for _, f := range fs {
		fv := v.Field(f.index)
		if err := register(flags, fv, f); err != nil {
			return fmt.Errorf("flag --%s: %w", f.name, err)
		}
		if f.required {
			if err := cmd.MarkFlagRequired(f.name); err != nil {
				return fmt.Errorf("flag --%s: %w", f.name, err)
			}
		}
	}
	return nil
}

// MustBind is Bind for command constructors
func MustBind(cmd *cobra.Command, target any) {
	if err := Bind(cmd, target); err != nil {
		panic(err)
	}
}

func register(flags *pflag.FlagSet, fv reflect.Value, f field) error {
	var def any = fv.Interface()
	if f.def != "" {
		def = f.def
	}

	if fv.Type() == durationType {
		d, err := cast.ToDurationE(def)
		if err != nil {
			return err
		}
		flags.DurationP(f.name, f.short, d, f.usage)
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(def)
		if err != nil {
			return err
		}
		flags.StringP(f.name, f.short, s, f.usage)
	case reflect.Int:
		n, err := cast.ToIntE(def)
		if err != nil {
			return err
		}
		flags.IntP(f.name, f.short, n, f.usage)
	case reflect.Uint:
		n, err := cast.ToUintE(def)
		if err != nil {
			return err
		}
		flags.UintP(f.name, f.short, n, f.usage)
	case reflect.Bool:
		b, err := cast.ToBoolE(def)
		if err != nil {
			return err
		}
		flags.BoolP(f.name, f.short, b, f.usage)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element %s", fv.Type().Elem())
		}
		var items []string
		if f.def != "" {
			items = strings.Split(f.def, ",")
		} else {
			items = cast.ToStringSlice(fv.Interface())
		}
		flags.StringSliceP(f.name, f.short, items, f.usage)
	default:
		return fmt.Errorf("unsupported type %s", fv.Type())
	}
	return nil
}

// Parse copies the parsed flag values into target
func Parse(cmd *cobra.Command, target any) error {
	v, fs, err := fields(target)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for _, f := range fs {
		if err := assign(flags, v.Field(f.index), f.name); err != nil {
			return fmt.Errorf("flag --%s: %w", f.name, err)
		}
	}
	return nil
}

func assign(flags *pflag.FlagSet, fv reflect.Value, name string) error {
	if fv.Type() == durationType {
		d, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		s, err := flags.GetString(name)
		if err != nil {
			return err
		}
		fv.SetString(s)
	case reflect.Int:
		n, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		fv.SetInt(int64(n))
	case reflect.Uint:
		n, err := flags.GetUint(name)
		if err != nil {
			return err
		}
		fv.SetUint(uint64(n))
	case reflect.Bool:
		b, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		items, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported type %s", fv.Type())
	}
	return nil
}
