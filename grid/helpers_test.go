package grid

import "time"

type person struct {
	ID     int
	Name   string
	Age    int
	Joined time.Time
}

func personColumns() []Column[person] {
	return []Column[person]{
		{Field: "id", Title: "ID", Sortable: true, Value: func(p person) any { return p.ID }},
		{Field: "name", Title: "Name", Sortable: true, Filterable: true, Value: func(p person) any { return p.Name }},
		{Field: "age", Title: "Age", Sortable: true, Filterable: true, Value: func(p person) any { return p.Age }},
		{Field: "joined", Title: "Joined", Sortable: true, Value: func(p person) any { return p.Joined }},
		{Field: "note", Title: "Note", Value: func(p person) any { return "-" }},
	}
}

func personKey(p person) int { return p.ID }

func ids(rows []person) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
