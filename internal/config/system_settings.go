package config

import (
	"os"
	"strconv"
)

const DATABASE_TYPE = "VHM_DATABASE_TYPE"
const DATABASE_URL = "VHM_DATABASE_URL"
const DATABASE_SQLLITE_FILE_NAME = "VHM_DATABASE_SQLLITE_FILE_NAME"
const SERVER_WEB_PORT = "VHM_SERVER_WEB_PORT"
const WEB_SESSION_EXPIRY_HOURS = "VHM_WEB_SESSION_EXPIRY_HOURS"
const STOCK_CAS_MAX_RETRIES = "VHM_STOCK_CAS_MAX_RETRIES" //bounded retries for optimistic stock updates
const BOOTSTRAP_ADMIN_USERNAME = "VHM_BOOTSTRAP_ADMIN_USERNAME"
const BOOTSTRAP_ADMIN_PASSWORD = "VHM_BOOTSTRAP_ADMIN_PASSWORD"

const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"

func GetSystemSettingInteger(settingKey string) int {
	val := GetSystemSettingString(settingKey)
	if val != "" {
		intValue, _ := strconv.Atoi(val)
		return intValue
	}
	return 0
}

func GetSystemSettingString(settingKey string) string {
	val := os.Getenv(settingKey)
	if val != "" {
		return val
	}
	if settingKey == SERVER_WEB_PORT {
		return "8080"
	}
	if settingKey == WEB_SESSION_EXPIRY_HOURS {
		return "8"
	}
	if settingKey == STOCK_CAS_MAX_RETRIES {
		return "3"
	}
	if settingKey == DATABASE_SQLLITE_FILE_NAME {
		return "./vendhub.db"
	}
	if settingKey == BOOTSTRAP_ADMIN_USERNAME {
		return "admin"
	}
	return ""
}
