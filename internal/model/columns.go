package model

import (
	"strconv"
	"time"
)

type Column string

const (
	ColTimestamp        Column = "timestamp"
	ColTemperature      Column = "temperature"
	ColHumidity         Column = "humidity"
	ColAmbientLight     Column = "ambient_light"
	ColOccupancy        Column = "occupancy"
	ColHVAC             Column = "hvac_consumption"
	ColLighting         Column = "lighting_consumption"
	ColBase             Column = "base_load"
	ColSolar            Column = "solar_generation"
	ColTotalConsumption Column = "total_consumption"
	ColNetEnergy        Column = "net_energy"
	ColGridImport       Column = "grid_import"
	ColGridExport       Column = "grid_export"
)

// Columns is the stable, ordered column set of a combined series row.
// Exporters and the dashboard rely on this order.
var Columns = []Column{
	ColTimestamp,
	ColTemperature,
	ColHumidity,
	ColAmbientLight,
	ColOccupancy,
	ColHVAC,
	ColLighting,
	ColBase,
	ColSolar,
	ColTotalConsumption,
	ColNetEnergy,
	ColGridImport,
	ColGridExport,
}

// ColumnInfo holds display name and unit for a column.
type ColumnInfo struct {
	Name string
	Unit string
}

// ColumnCatalog maps every Column to its display name and unit.
var ColumnCatalog = map[Column]ColumnInfo{
	ColTimestamp:        {Name: "Timestamp", Unit: ""},
	ColTemperature:      {Name: "Temperature", Unit: "°C"},
	ColHumidity:         {Name: "Relative Humidity", Unit: "%"},
	ColAmbientLight:     {Name: "Ambient Light", Unit: "lux"},
	ColOccupancy:        {Name: "Occupancy", Unit: "persons"},
	ColHVAC:             {Name: "HVAC Load", Unit: "kW"},
	ColLighting:         {Name: "Lighting Load", Unit: "kW"},
	ColBase:             {Name: "Base Load", Unit: "kW"},
	ColSolar:            {Name: "Solar Generation", Unit: "kW"},
	ColTotalConsumption: {Name: "Total Consumption", Unit: "kW"},
	ColNetEnergy:        {Name: "Net Energy", Unit: "kW"},
	ColGridImport:       {Name: "Grid Import", Unit: "kW"},
	ColGridExport:       {Name: "Grid Export", Unit: "kW"},
}

// Value returns the record's numeric value for a column. The timestamp
// column and unknown columns report ok == false.
func (r BalanceRecord) Value(c Column) (float64, bool) {
	switch c {
	case ColTemperature:
		return r.TemperatureC, true
	case ColHumidity:
		return r.HumidityPct, true
	case ColAmbientLight:
		return r.AmbientLux, true
	case ColOccupancy:
		return float64(r.Occupancy), true
	case ColHVAC:
		return r.HVACKW, true
	case ColLighting:
		return r.LightingKW, true
	case ColBase:
		return r.BaseKW, true
	case ColSolar:
		return r.SolarKW, true
	case ColTotalConsumption:
		return r.TotalConsumptionKW, true
	case ColNetEnergy:
		return r.NetEnergyKW, true
	case ColGridImport:
		return r.GridImportKW, true
	case ColGridExport:
		return r.GridExportKW, true
	}
	return 0, false
}

// Row renders the record as strings in Columns order.
func (r BalanceRecord) Row() []string {
	row := make([]string, len(Columns))
	for i, c := range Columns {
		switch c {
		case ColTimestamp:
			row[i] = r.Timestamp.Format(time.RFC3339)
		case ColOccupancy:
			row[i] = strconv.Itoa(r.Occupancy)
		default:
			v, _ := r.Value(c)
			row[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return row
}
