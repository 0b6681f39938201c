package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	userModel "github.com/frahmantamala/farm-management/internal/core/datamodel/user"
)

var _ = ginkgo.Describe("FlattenPermissions", func() {
	ginkgo.It("should union actions across granted modules", func() {
		modules := []userModel.Module{
			{
				Name: "crops", IsActive: true,
				Actions: []userModel.ModuleAction{
					{Name: "list", PathEndpoint: "/crops/all"},
					{Name: "create", PathEndpoint: "/crops"},
				},
			},
			{
				Name: "harvests", IsActive: true,
				Actions: []userModel.ModuleAction{
					{Name: "list", PathEndpoint: "/harvests/all"},
				},
			},
		}

		endpoints := FlattenPermissions(modules)

		gomega.Expect(endpoints).To(gomega.ConsistOf("/crops/all", "/crops", "/harvests/all"))
	})

	ginkgo.It("should skip inactive modules", func() {
		modules := []userModel.Module{
			{
				Name: "crops", IsActive: false,
				Actions: []userModel.ModuleAction{
					{Name: "list", PathEndpoint: "/crops/all"},
				},
			},
		}

		gomega.Expect(FlattenPermissions(modules)).To(gomega.BeEmpty())
	})

	ginkgo.It("should deduplicate endpoints shared by modules", func() {
		modules := []userModel.Module{
			{
				Name: "crops", IsActive: true,
				Actions: []userModel.ModuleAction{
					{Name: "list", PathEndpoint: "/crops/all"},
				},
			},
			{
				Name: "reporting", IsActive: true,
				Actions: []userModel.ModuleAction{
					{Name: "crop-report", PathEndpoint: "/crops/all"},
				},
			},
		}

		gomega.Expect(FlattenPermissions(modules)).To(gomega.Equal([]string{"/crops/all"}))
	})

	ginkgo.It("should ignore actions without an endpoint", func() {
		modules := []userModel.Module{
			{
				Name: "crops", IsActive: true,
				Actions: []userModel.ModuleAction{
					{Name: "internal-only", PathEndpoint: ""},
				},
			},
		}

		gomega.Expect(FlattenPermissions(modules)).To(gomega.BeEmpty())
	})

	ginkgo.It("should return nothing for no modules", func() {
		gomega.Expect(FlattenPermissions(nil)).To(gomega.BeEmpty())
	})
})
