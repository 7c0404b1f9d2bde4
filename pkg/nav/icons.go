package nav

// iconAssets maps the catalog's icon symbols to display asset names.
var iconAssets = map[string]string{
	"ORGANIZATION":      "businessCompany",
	"PROJECT":           "project",
	"ANALYSIS":          "analyze",
	"ICON_1":            "application",
	"ICON_2":            "applicationServer",
	"ICON_3":            "biReportGallery",
	"ICON_4":            "allocationRule",
	"ICON_5":            "barChart",
	"ICON_6":            "gisMember",
	"ICON_7":            "dashboard",
	"ICON_8":            "workflowItem",
	"ICON_9":            "collaboration",
	"ICON_10":           "indicator",
	"ICON_11":           "plan",
	"ICON_12":           "indicatorData",
	"ICON_13":           "sourceDatabase",
	"ICON_14":           "library",
	"ICON_15":           "lookup",
	"ICON_16":           "server",
	"ICON_17":           "stabilityMonitoringAnalysis",
	"ICON_18":           "visualStatistics",
	"ICON_19":           "webFunnel",
	"ICON_20":           "concatenate",
	"FOLDER":            "folder",
	"FILE":              "file",
	"FILE_SASCATALOG":   "sasCatalog",
	"FILE_JOB":          "jobTemplate",
	"FILE_PDF":          "pdfFile",
	"FILE_SASDATASET":   "sasDataSet",
	"FILE_SASVIEW":      "dataSetView",
	"FILE_SASPROGRAM":   "sasProgramFile",
	"FILE_RPROGRAM":     "rCode",
	"FILE_RDATAFILE":    "rdataFile",
	"FILE_RDS":          "rdsFile",
	"FILE_AUDIO":        "audioFile",
	"FILE_CSV":          "csvFile",
	"FILE_EXCEL":        "excelFile",
	"FILE_HTML":         "htmlFile",
	"FILE_POWERPOINT":   "powerPointFile",
	"FILE_SASTRANSPORT": "sasTransportFile",
	"FILE_VIDEO":        "videoFile",
	"FILE_WORD":         "wordFile",
	"FILE_XML":          "xmlFile",
	"FILE_ZIP":          "zipFile",
	"PROCESSFLOW":       "workflowItem",
	"TASK":              "task",
	"UNKNOWN":           "unknownNode",
	"SAS_LOG":           "log",
	"R_LOG":             "log",
}

// DefaultIcon is used for items whose icon symbol has no mapping.
const DefaultIcon = "file"

// IconAsset resolves a catalog icon symbol to a display asset name. Unmapped
// symbols fall back to the generic file icon.
func IconAsset(symbol string) string {
	if asset, ok := iconAssets[symbol]; ok {
		return asset
	}
	return DefaultIcon
}
