package main_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFarmManagement(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FarmManagement Suite")
}
