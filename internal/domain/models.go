package domain

// Project represents a tenant of the shared hardware
type Project struct {
	ID    int64  // Unique identifier
	Label string // Project name
}

// Node represents a physical machine. A nil ProjectID means the node is in the free pool.
type Node struct {
	ID        int64  // Unique identifier
	Label     string // Node name
	ProjectID *int64 // Owning project (optional)
}

// Nic represents a network interface on a node
type Nic struct {
	ID      int64  // Unique identifier
	NodeID  int64  // Foreign key to Node
	Label   string // Interface name, unique within its node (e.g., "eth0")
	MACAddr string // Hardware address
	PortID  *int64 // Bound switch port (optional)
}

// Switch represents a physical or logical switching device
type Switch struct {
	ID     int64        // Unique identifier
	Label  string       // Switch name
	Type   SwitchType   // Driver family
	Config SwitchConfig // Family specific connection parameters
}

// Port represents a physical port on a switch
type Port struct {
	ID       int64  // Unique identifier
	SwitchID int64  // Foreign key to Switch
	Label    string // Port name, unique within its switch (e.g., "gi1/0/5")
}

// Network represents an isolated layer 2 domain
type Network struct {
	ID        int64  // Unique identifier
	Label     string // Network name
	CreatorID *int64 // Creating project, nil for the administrator
	AccessID  *int64 // Project allowed to attach, nil for public networks
	Allocated bool   // Whether NetworkID came from the allocator
	NetworkID string // Allocator or administrator supplied identifier (e.g., a VLAN number)
}

// DefaultChannel is the channel used for every nic attachment
const DefaultChannel = "vlan/native"

// NetworkAttachment is the applied (reconciled) connection of a nic to a network
type NetworkAttachment struct {
	ID        int64  // Unique identifier
	NicID     int64  // Foreign key to Nic
	NetworkID int64  // Foreign key to Network
	Channel   string // Channel on the nic (e.g., "vlan/native")
}

// NetworkingAction is a pending change to a nic's attachment, kept in the journal
// until the reconciler applies it. A nil NewNetworkID means detach.
type NetworkingAction struct {
	ID           int64  // Monotonic journal position
	NicID        int64  // Foreign key to Nic
	NewNetworkID *int64 // Target network (optional)
}

// Headnode represents a project's virtual head node. Dirty headnodes have not
// been started yet and their hnics may still change.
type Headnode struct {
	ID        int64  // Unique identifier
	Label     string // Headnode name
	ProjectID int64  // Owning project
	BaseImg   string // Image the VM is cloned from
	Dirty     bool   // True until first start
}

// Hnic represents a virtual nic on a headnode
type Hnic struct {
	ID         int64  // Unique identifier
	HeadnodeID int64  // Foreign key to Headnode
	Label      string // Interface name, unique within its headnode
	NetworkID  *int64 // Connected network (optional)
}
