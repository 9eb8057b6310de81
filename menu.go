package menupdf

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Macros holds per-meal macronutrients in grams. Zero means absent.
type Macros struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

// Meal is one meal of a day.
type Meal struct {
	Name   string
	Items  []string
	Kcal   string // as given by the payload; empty when absent
	Macros Macros
	Notes  string
}

// Day is one day of the menu.
type Day struct {
	Label string
	Meals []Meal
}

// ShoppingItem is one line of the shopping list.
type ShoppingItem struct {
	Name     string
	Quantity string
}

// ShoppingGroup is one shopping category.
type ShoppingGroup struct {
	Category string
	Items    []ShoppingItem
}

// Menu is everything the document renders.
type Menu struct {
	Days         []Day
	ShoppingList []ShoppingGroup
	Assumptions  []string
}

// ExtractDays returns the day list of a menu payload. The top-level "dias"
// array wins over "menu.dias". Anything else, including invalid JSON,
// yields an empty non-nil slice.
func ExtractDays(payload []byte) []Day {
	root := parsePayload(payload)
	days := []Day{}
	dias := arrayAt(root, "dias")
	if !dias.IsArray() {
		dias = arrayAt(root, "menu.dias")
	}
	for _, d := range dias.Array() {
		days = append(days, extractDay(d))
	}
	return days
}

// ExtractMenu returns days, shopping list and assumptions with the same
// lenient policy as ExtractDays.
func ExtractMenu(payload []byte) Menu {
	root := parsePayload(payload)
	m := Menu{
		Days:         ExtractDays(payload),
		ShoppingList: []ShoppingGroup{},
		Assumptions:  []string{},
	}
	for _, g := range arrayAt(root, "shoppingList").Array() {
		group := ShoppingGroup{Category: text(g.Get("categoria")), Items: []ShoppingItem{}}
		for _, it := range arrayAt(g, "itens").Array() {
			if it.IsObject() {
				group.Items = append(group.Items, ShoppingItem{
					Name:     text(it.Get("nome")),
					Quantity: text(it.Get("quantidade")),
				})
				continue
			}
			if s := text(it); s != "" {
				group.Items = append(group.Items, ShoppingItem{Name: s})
			}
		}
		m.ShoppingList = append(m.ShoppingList, group)
	}
	for _, a := range arrayAt(root, "assumptions").Array() {
		if s := text(a); s != "" {
			m.Assumptions = append(m.Assumptions, s)
		}
	}
	return m
}

func extractDay(d gjson.Result) Day {
	day := Day{Label: text(d.Get("dia")), Meals: []Meal{}}
	for _, r := range arrayAt(d, "refeicoes").Array() {
		meal := Meal{
			Name:  text(r.Get("nome")),
			Items: []string{},
			Kcal:  text(r.Get("kcal")),
			Notes: text(r.Get("observacoes")),
		}
		for _, it := range arrayAt(r, "itens").Array() {
			if s := text(it); s != "" {
				meal.Items = append(meal.Items, s)
			}
		}
		if mac := r.Get("macros"); mac.IsObject() {
			meal.Macros = Macros{
				Protein: number(mac.Get("protein_g")),
				Carbs:   number(mac.Get("carbs_g")),
				Fat:     number(mac.Get("fat_g")),
			}
		}
		day.Meals = append(day.Meals, meal)
	}
	return day
}

func parsePayload(payload []byte) gjson.Result {
	if !gjson.ValidBytes(payload) {
		return gjson.Result{}
	}
	return gjson.ParseBytes(payload)
}

// arrayAt returns the value at path when it is an array, else an empty result.
func arrayAt(r gjson.Result, path string) gjson.Result {
	if !r.IsObject() {
		return gjson.Result{}
	}
	v := r.Get(path)
	if !v.IsArray() {
		return gjson.Result{}
	}
	return v
}

// text stringifies strings and numbers; other JSON types read as absent.
func text(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return strings.TrimSpace(r.Str)
	case gjson.Number:
		return r.Raw
	}
	return ""
}

// number reads numbers and numeric strings; other values read as zero.
func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Num
	case gjson.String:
		return gjson.Parse(strings.TrimSpace(r.Str)).Num
	}
	return 0
}
