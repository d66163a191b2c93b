package semantic

import (
	"fmt"
	"strings"

	"github.com/tinyxlang/tinyx/internal/ast"
	"github.com/tinyxlang/tinyx/internal/token"
)

// IdInfo is one symbol table entry: a stable memory location assigned in
// declaration order, every appearance of the identifier, and its current
// constant-folded/runtime value.
type IdInfo struct {
	Name        string
	MemLocation int
	Locations   []token.Position
	Value       ast.Value
	Type        string
}

// SymbolTable owns every declared identifier. mem_location is assigned
// sequentially starting at 0, in first-declaration order, and never
// reused.
type SymbolTable struct {
	entries map[string]*IdInfo
	order   []string
	next    int
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]*IdInfo)}
}

// Declare inserts a fresh entry for name with the given type and
// declaration-site location, assigning the next mem_location and a
// type-appropriate default value. The caller must have already checked
// Lookup to avoid redeclaration.
func (t *SymbolTable) Declare(name, typ string, pos token.Position) *IdInfo {
	info := &IdInfo{
		Name:        name,
		MemLocation: t.next,
		Locations:   []token.Position{pos},
		Value:       defaultValue(typ),
		Type:        typ,
	}
	t.next++
	t.entries[name] = info
	t.order = append(t.order, name)
	return info
}

// Lookup returns the entry for name, if declared.
func (t *SymbolTable) Lookup(name string) (*IdInfo, bool) {
	info, ok := t.entries[name]
	return info, ok
}

// Len reports how many identifiers have been declared.
func (t *SymbolTable) Len() int { return len(t.order) }

// ByMemLocation finds the entry occupying the given mem_location, used by
// the PM's ST instruction to type-coerce a write.
func (t *SymbolTable) ByMemLocation(loc int) *IdInfo {
	for _, name := range t.order {
		if info := t.entries[name]; info.MemLocation == loc {
			return info
		}
	}
	return nil
}

func defaultValue(typ string) ast.Value {
	switch typ {
	case "real":
		return ast.RealVal(0)
	case "boolean":
		return ast.BoolVal(false)
	default:
		return ast.IntVal(0)
	}
}

// Dump renders the table as symtab.txt:
// one "name: mem_loc#[locations]#value#type" line per identifier, in
// declaration order.
func (t *SymbolTable) Dump() string {
	var sb strings.Builder
	for _, name := range t.order {
		info := t.entries[name]
		locs := make([]string, len(info.Locations))
		for i, p := range info.Locations {
			locs[i] = p.String()
		}
		fmt.Fprintf(&sb, "%s: %d#[%s]#%s#%s\n",
			name, info.MemLocation, strings.Join(locs, ","), info.Value.String(), info.Type)
	}
	return sb.String()
}
