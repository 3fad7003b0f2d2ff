package csvreader

import (
	log "github.com/sirupsen/logrus"
)

func logError(logger log.FieldLogger, message string, err error) {
	logger.WithFields(log.Fields{"error": err}).Error(message)
}

func warn(logger log.FieldLogger, message string, fields log.Fields) {
	logger.WithFields(fields).Warn(message)
}

func debug(logger log.FieldLogger, message string, fields log.Fields) {
	logger.WithFields(fields).Debug(message)
}
