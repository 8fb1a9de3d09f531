package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unit 计量单位，入库保存规范字符串值
type Unit string

const (
	UnitPiece   Unit = "piece"
	UnitPieces  Unit = "pieces"
	UnitBottle  Unit = "bottle"
	UnitBottles Unit = "bottles"
	UnitCan     Unit = "can"
	UnitCans    Unit = "cans"
	UnitBox     Unit = "box"
	UnitBoxes   Unit = "boxes"
	UnitPack    Unit = "pack"
	UnitPacks   Unit = "packs"
	UnitBag     Unit = "bag"
	UnitBags    Unit = "bags"
	UnitTube    Unit = "tube"
	UnitTubes   Unit = "tubes"
	UnitRoll    Unit = "roll"
	UnitRolls   Unit = "rolls"

	UnitGram      Unit = "g"
	UnitGrams     Unit = "grams"
	UnitKilogram  Unit = "kg"
	UnitKilograms Unit = "kilograms"
	UnitPound     Unit = "lb"
	UnitPounds    Unit = "pounds"
	UnitOunce     Unit = "oz"
	UnitOunces    Unit = "ounces"

	UnitMilliliter  Unit = "ml"
	UnitMilliliters Unit = "milliliters"
	UnitLiter       Unit = "l"
	UnitLiters      Unit = "liters"
	UnitFluidOunce  Unit = "fl oz"
	UnitFluidOunces Unit = "fluid ounces"
	UnitCup         Unit = "cup"
	UnitCups        Unit = "cups"
	UnitPint        Unit = "pint"
	UnitPints       Unit = "pints"
	UnitQuart       Unit = "quart"
	UnitQuarts      Unit = "quarts"
	UnitGallon      Unit = "gallon"
	UnitGallons     Unit = "gallons"

	UnitMeter       Unit = "m"
	UnitMeters      Unit = "meters"
	UnitCentimeter  Unit = "cm"
	UnitCentimeters Unit = "centimeters"
	UnitFoot        Unit = "ft"
	UnitFeet        Unit = "feet"
	UnitInch        Unit = "in"
	UnitInches      Unit = "inches"

	UnitTablet   Unit = "tablet"
	UnitTablets  Unit = "tablets"
	UnitCapsule  Unit = "capsule"
	UnitCapsules Unit = "capsules"
	UnitDose     Unit = "dose"
	UnitDoses    Unit = "doses"
	UnitSheet    Unit = "sheet"
	UnitSheets   Unit = "sheets"
	UnitStick    Unit = "stick"
	UnitSticks   Unit = "sticks"
	UnitPortion  Unit = "portion"
	UnitPortions Unit = "portions"
	UnitServing  Unit = "serving"
	UnitServings Unit = "servings"
)

// UnitCategory 单位分组，用于下拉框分组展示
type UnitCategory string

const (
	UnitCategoryCount      UnitCategory = "Count"
	UnitCategoryContainers UnitCategory = "Containers"
	UnitCategoryWeight     UnitCategory = "Weight"
	UnitCategoryVolume     UnitCategory = "Volume"
	UnitCategoryLength     UnitCategory = "Length"
	UnitCategoryFood       UnitCategory = "Food & Portions"
)

// unitCategoryOrder 分组的展示顺序
var unitCategoryOrder = []UnitCategory{
	UnitCategoryCount,
	UnitCategoryContainers,
	UnitCategoryWeight,
	UnitCategoryVolume,
	UnitCategoryLength,
	UnitCategoryFood,
}

type unitMeta struct {
	unit     Unit
	category UnitCategory
	color    string
	icon     string
}

// unitTable 每个单位只在这里声明一次，分类/颜色/图标必须同时给出
// 顺序即枚举顺序；分组内顺序按 GroupedUnitOptions 的固定数据
var unitTable = []unitMeta{
	{UnitPiece, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitPieces, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitBottle, UnitCategoryContainers, "info", "heroicon-m-beaker"},
	{UnitBottles, UnitCategoryContainers, "info", "heroicon-m-beaker"},
	{UnitCan, UnitCategoryContainers, "info", "heroicon-m-circle-stack"},
	{UnitCans, UnitCategoryContainers, "info", "heroicon-m-circle-stack"},
	{UnitBox, UnitCategoryContainers, "info", "heroicon-m-cube"},
	{UnitBoxes, UnitCategoryContainers, "info", "heroicon-m-cube"},
	{UnitPack, UnitCategoryContainers, "info", "heroicon-m-archive-box"},
	{UnitPacks, UnitCategoryContainers, "info", "heroicon-m-archive-box"},
	{UnitBag, UnitCategoryContainers, "info", "heroicon-m-archive-box"},
	{UnitBags, UnitCategoryContainers, "info", "heroicon-m-archive-box"},
	{UnitTube, UnitCategoryContainers, "info", "heroicon-m-minus"},
	{UnitTubes, UnitCategoryContainers, "info", "heroicon-m-minus"},
	{UnitRoll, UnitCategoryContainers, "info", "heroicon-m-circle-stack"},
	{UnitRolls, UnitCategoryContainers, "info", "heroicon-m-circle-stack"},

	{UnitGram, UnitCategoryWeight, "warning", "heroicon-m-scale"},
	{UnitGrams, UnitCategoryWeight, "warning", "heroicon-m-scale"},
	{UnitKilogram, UnitCategoryWeight, "warning", "heroicon-m-scale"},
	{UnitKilograms, UnitCategoryWeight, "warning", "heroicon-m-scale"},
	{UnitPound, UnitCategoryWeight, "warning", "heroicon-m-scale"},
	{UnitPounds, UnitCategoryWeight, "warning", "heroicon-m-scale"},
	{UnitOunce, UnitCategoryWeight, "warning", "heroicon-m-scale"},
	{UnitOunces, UnitCategoryWeight, "warning", "heroicon-m-scale"},

	{UnitMilliliter, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitMilliliters, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitLiter, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitLiters, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitFluidOunce, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitFluidOunces, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitCup, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitCups, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitPint, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitPints, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitQuart, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitQuarts, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitGallon, UnitCategoryVolume, "gray", "heroicon-m-beaker"},
	{UnitGallons, UnitCategoryVolume, "gray", "heroicon-m-beaker"},

	{UnitMeter, UnitCategoryLength, "success", "heroicon-m-calculator"},
	{UnitMeters, UnitCategoryLength, "success", "heroicon-m-calculator"},
	{UnitCentimeter, UnitCategoryLength, "success", "heroicon-m-calculator"},
	{UnitCentimeters, UnitCategoryLength, "success", "heroicon-m-calculator"},
	{UnitFoot, UnitCategoryLength, "success", "heroicon-m-calculator"},
	{UnitFeet, UnitCategoryLength, "success", "heroicon-m-calculator"},
	{UnitInch, UnitCategoryLength, "success", "heroicon-m-calculator"},
	{UnitInches, UnitCategoryLength, "success", "heroicon-m-calculator"},

	{UnitTablet, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitTablets, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitCapsule, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitCapsules, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitDose, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitDoses, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitSheet, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitSheets, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitStick, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitSticks, UnitCategoryCount, "primary", "heroicon-m-squares-2x2"},
	{UnitPortion, UnitCategoryFood, "danger", "heroicon-m-cake"},
	{UnitPortions, UnitCategoryFood, "danger", "heroicon-m-cake"},
	{UnitServing, UnitCategoryFood, "danger", "heroicon-m-cake"},
	{UnitServings, UnitCategoryFood, "danger", "heroicon-m-cake"},
}

var unitIndex = make(map[Unit]unitMeta, len(unitTable))

func init() {
	for _, m := range unitTable {
		if _, dup := unitIndex[m.unit]; dup {
			panic(fmt.Sprintf("unit %q declared twice", m.unit))
		}
		unitIndex[m.unit] = m
	}
}

// ParseUnit 解析单位字符串，只接受规范值
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.TrimSpace(s))
	if !u.Valid() {
		return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidValue, s)
	}
	return u, nil
}

// Units 返回全部单位（枚举顺序）
func Units() []Unit {
	list := make([]Unit, 0, len(unitTable))
	for _, m := range unitTable {
		list = append(list, m.unit)
	}
	return list
}

func (u Unit) Valid() bool {
	_, ok := unitIndex[u]
	return ok
}

// Label 规范值按单词首字母大写，如 "fl oz" -> "Fl Oz"
func (u Unit) Label() string {
	return cases.Title(language.English).String(string(u))
}

func (u Unit) Color() string {
	return unitIndex[u].color
}

func (u Unit) Icon() string {
	return unitIndex[u].icon
}

func (u Unit) Category() UnitCategory {
	return unitIndex[u].category
}

// UnitOption 下拉选项
type UnitOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UnitGroup 分组下拉选项
type UnitGroup struct {
	Name    UnitCategory `json:"name"`
	Options []UnitOption `json:"options"`
}

// UnitOptions 不分组的选项，value 与 label 均为规范值
func UnitOptions() []UnitOption {
	list := make([]UnitOption, 0, len(unitTable))
	for _, m := range unitTable {
		list = append(list, UnitOption{Value: string(m.unit), Label: string(m.unit)})
	}
	return list
}

// GroupedUnitOptions 按分组返回选项，分组顺序固定，每个单位恰好出现一次
func GroupedUnitOptions() []UnitGroup {
	groups := make([]UnitGroup, 0, len(unitCategoryOrder))
	for _, cat := range unitCategoryOrder {
		g := UnitGroup{Name: cat}
		for _, u := range unitGroupMembers[cat] {
			g.Options = append(g.Options, UnitOption{Value: string(u), Label: u.Label()})
		}
		groups = append(groups, g)
	}
	return groups
}

// unitGroupMembers 分组成员及组内顺序
var unitGroupMembers = map[UnitCategory][]Unit{
	UnitCategoryCount: {
		UnitPiece, UnitPieces, UnitTablet, UnitTablets, UnitCapsule, UnitCapsules,
		UnitDose, UnitDoses, UnitSheet, UnitSheets, UnitStick, UnitSticks,
	},
	UnitCategoryContainers: {
		UnitBottle, UnitBottles, UnitCan, UnitCans, UnitBox, UnitBoxes,
		UnitPack, UnitPacks, UnitBag, UnitBags, UnitTube, UnitTubes, UnitRoll, UnitRolls,
	},
	UnitCategoryWeight: {
		UnitGram, UnitGrams, UnitKilogram, UnitKilograms,
		UnitPound, UnitPounds, UnitOunce, UnitOunces,
	},
	UnitCategoryVolume: {
		UnitMilliliter, UnitMilliliters, UnitLiter, UnitLiters, UnitFluidOunce, UnitFluidOunces,
		UnitCup, UnitCups, UnitPint, UnitPints, UnitQuart, UnitQuarts, UnitGallon, UnitGallons,
	},
	UnitCategoryLength: {
		UnitMeter, UnitMeters, UnitCentimeter, UnitCentimeters,
		UnitFoot, UnitFeet, UnitInch, UnitInches,
	},
	UnitCategoryFood: {
		UnitPortion, UnitPortions, UnitServing, UnitServings,
	},
}
