package models

import "github.com/Gobusters/ectolinq"

type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// DaysOfWeek lists the days in display order.
var DaysOfWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the meal types in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

type Category string

const (
	CategoryProduce Category = "produce"
	CategoryMeat    Category = "meat"
	CategoryDairy   Category = "dairy"
	CategoryPantry  Category = "pantry"
	CategoryFrozen  Category = "frozen"
	CategoryBakery  Category = "bakery"
	CategoryOther   Category = "other"
)

// Categories lists the grocery categories in display order.
var Categories = []Category{
	CategoryProduce,
	CategoryMeat,
	CategoryDairy,
	CategoryPantry,
	CategoryFrozen,
	CategoryBakery,
	CategoryOther,
}

type ViewMode string

const (
	ViewModeList     ViewMode = "list"
	ViewModeCategory ViewMode = "category"
)

var ViewModes = []ViewMode{ViewModeList, ViewModeCategory}

const (
	DefaultMealPlanName     = "My Meal Plan"
	DefaultShoppingListName = "My Shopping List"
	DefaultQuantity         = "1"
	DefaultViewMode         = ViewModeList
	DefaultActiveCategory   = CategoryProduce
)

func (d DayOfWeek) IsValid() bool { return ectolinq.Contains(DaysOfWeek, d) }

func (m MealType) IsValid() bool { return ectolinq.Contains(MealTypes, m) }

func (c Category) IsValid() bool { return ectolinq.Contains(Categories, c) }

func (v ViewMode) IsValid() bool { return ectolinq.Contains(ViewModes, v) }

type DayLabel struct {
	Short string `json:"short"`
	Full  string `json:"full"`
}

var dayLabels = map[DayOfWeek]DayLabel{
	Monday:    {Short: "Mon", Full: "Monday"},
	Tuesday:   {Short: "Tue", Full: "Tuesday"},
	Wednesday: {Short: "Wed", Full: "Wednesday"},
	Thursday:  {Short: "Thu", Full: "Thursday"},
	Friday:    {Short: "Fri", Full: "Friday"},
	Saturday:  {Short: "Sat", Full: "Saturday"},
	Sunday:    {Short: "Sun", Full: "Sunday"},
}

// Label returns the display labels of the day. Unknown days echo the raw value.
func (d DayOfWeek) Label() DayLabel {
	if label, ok := dayLabels[d]; ok {
		return label
	}
	return DayLabel{Short: string(d), Full: string(d)}
}

type CategoryLabel struct {
	Key   Category `json:"key"`
	Label string   `json:"label"`
	Emoji string   `json:"emoji"`
}

var categoryLabels = map[Category]CategoryLabel{
	CategoryProduce: {Key: CategoryProduce, Label: "Produce", Emoji: "🥬"},
	CategoryMeat:    {Key: CategoryMeat, Label: "Meat & Fish", Emoji: "🥩"},
	CategoryDairy:   {Key: CategoryDairy, Label: "Dairy & Eggs", Emoji: "🥛"},
	CategoryPantry:  {Key: CategoryPantry, Label: "Pantry", Emoji: "🥫"},
	CategoryFrozen:  {Key: CategoryFrozen, Label: "Frozen", Emoji: "🧊"},
	CategoryBakery:  {Key: CategoryBakery, Label: "Bakery", Emoji: "🍞"},
	CategoryOther:   {Key: CategoryOther, Label: "Other", Emoji: "🛒"},
}

func (c Category) Label() CategoryLabel {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return CategoryLabel{Key: c, Label: string(c)}
}

// CategoryLabels returns the labels of every category in display order.
func CategoryLabels() []CategoryLabel {
	return ectolinq.Map(Categories, func(c Category) CategoryLabel { return c.Label() })
}
