package trajectory_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTrajectoryStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Trajectory Store Suite")
}
