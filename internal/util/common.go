package util

import "github.com/sirupsen/logrus"

func ContinueOrFatal(logger *logrus.Logger, err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
