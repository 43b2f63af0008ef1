package olx

import (
	"strings"

	"olx-car-scraper/models"
)

// Parameter labels on the detail page, as shown by the Russian-language site.
const (
	labelModel      = "Модель"
	labelGear       = "Коробка передач"
	labelColor      = "Цвет"
	labelFuel       = "Вид топлива"
	labelCondition  = "Состояние машины"
	labelExtras     = "Доп. опции"
	labelBodyType   = "Тип кузова"
	labelOwnerCount = "Количество хозяев"
)

// Owner type badges are rendered as bare parameter text without a label.
var ownerTypeBadges = []string{"Частное лицо", "Бизнес", "Компания"}

var gearTypes = map[string]models.GearType{
	"механическая":   models.GearManual,
	"автоматическая": models.GearAutomatic,
	"робот":          models.GearRobot,
	"вариатор":       models.GearCVT,
}

var colors = map[string]models.Color{
	"белый":       models.ColorWhite,
	"черный":      models.ColorBlack,
	"серебристый": models.ColorSilver,
	"серый":       models.ColorGrey,
	"синий":       models.ColorBlue,
	"красный":     models.ColorRed,
	"зеленый":     models.ColorGreen,
	"желтый":      models.ColorYellow,
}

var fuelTypes = map[string]models.FuelType{
	"бензин":  models.FuelGasoline,
	"дизель":  models.FuelDiesel,
	"электро": models.FuelElectric,
	"газ":     models.FuelGas,
	"гибрид":  models.FuelHybrid,
}

var conditions = map[string]models.Condition{
	"отличное":            models.ConditionIdeal,
	"повреждено":          models.ConditionDamaged,
	"нуждается в ремонте": models.ConditionNeedsRepair,
	"б/у":                 models.ConditionUsed,
}

// lookupKey folds case and the optional "ё" so "Чёрный" and "Черный" match.
func lookupKey(v string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "ё", "е")
}

func mapGearType(v string) models.GearType { return gearTypes[lookupKey(v)] }
func mapColor(v string) models.Color { return colors[lookupKey(v)] }
func mapFuelType(v string) models.FuelType { return fuelTypes[lookupKey(v)] }
func mapCondition(v string) models.Condition { return conditions[lookupKey(v)] }
