package query

import (
	"reflect"
	"testing"
)

func TestFilterPredicate_Build(t *testing.T) {
	sql, args, err := NewFilterPredicate().
		Equal("kind", "test").
		And().Equal("active", true).
		And().Open().Like("name", "vit_d%").Or().In("category", "omega_3", "magnesium").Close().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	want := "kind = ? AND active = ? AND (name ILIKE ? OR category IN ?)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	wantArgs := []any{"test", true, `%vit\_d\%%`, []any{"omega_3", "magnesium"}}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestFilterPredicate_ValuesNeverInlined(t *testing.T) {
	sql, args, err := NewFilterPredicate().Equal("user_id", "x' OR '1'='1").Build()
	if err != nil {
		t.Fatal(err)
	}
	if sql != "user_id = ?" || len(args) != 1 {
		t.Errorf("sql = %q args = %v", sql, args)
	}
}

func TestFilterPredicate_InvalidColumn(t *testing.T) {
	_, _, err := NewFilterPredicate().Equal("name; DROP TABLE users", 1).Build()
	if err == nil {
		t.Error("expected an invalid column error")
	}
}

func TestFilterPredicate_EmptyIn(t *testing.T) {
	sql, args, _ := NewFilterPredicate().In("id").Build()
	if sql != "1 = 0" || len(args) != 0 {
		t.Errorf("sql = %q args = %v", sql, args)
	}
	if !NewFilterPredicate().Empty() {
		t.Error("new predicate should be empty")
	}
}

func TestFilterPredicate_NotBetweenNull(t *testing.T) {
	sql, args, _ := NewFilterPredicate().
		Not().Between("price_cents", 0, 500).And().IsNull("withdrawn_at").
		Build()
	if sql != "NOT price_cents BETWEEN ? AND ? AND withdrawn_at IS NULL" {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}
