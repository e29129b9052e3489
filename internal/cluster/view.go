package cluster

import "civicsense/backend/internal/models"

// View is one cluster in the grouped read model: the representative
// complaint plus the remaining members.
type View struct {
	Representative models.Complaint   `json:"representative"`
	Members        []models.Complaint `json:"members"`
}

// GetClusteredView groups all complaints sharing a non-empty cluster
// reference by their representative. The representative is identified
// by the "reference equals own id" test and is excluded from its own
// member list. Views appear in the representatives' enumeration order.
func (s *Service) GetClusteredView() ([]View, error) {
	complaints, err := s.Storage.GetClusteredComplaints()
	if err != nil {
		return nil, err
	}

	byRoot := make(map[string]*View)
	order := []string{}

	for _, c := range complaints {
		root := *c.ClusterID
		v, ok := byRoot[root]
		if !ok {
			v = &View{}
			byRoot[root] = v
			order = append(order, root)
		}
		if c.IsClusterRoot() {
			v.Representative = c
		} else {
			v.Members = append(v.Members, c)
		}
	}

	views := make([]View, 0, len(order))
	for _, root := range order {
		v := byRoot[root]
		// A member can briefly point at a representative that already
		// left the clustered set (status change before the next pass);
		// a group without a representative is not a cluster.
		if v.Representative.ID == "" {
			continue
		}
		views = append(views, *v)
	}
	return views, nil
}
