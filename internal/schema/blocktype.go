package schema

// BlockType classifies a component against the closed set of block kinds the
// renderers know how to place. Unrecognized type strings are accepted
// structurally and resolve to BlockOther, which renders as a generic
// subsystem-like box rather than being rejected.
type BlockType string

const (
	BlockInport         BlockType = "Inport"
	BlockOutport        BlockType = "Outport"
	BlockGain           BlockType = "Gain"
	BlockSum            BlockType = "Sum"
	BlockIntegrator     BlockType = "Integrator"
	BlockSubsystem      BlockType = "Subsystem"
	BlockStateflowChart BlockType = "StateflowChart"
	BlockModelReference BlockType = "ModelReference"
	BlockConstant       BlockType = "Constant"
	BlockScope          BlockType = "Scope"
	BlockProduct        BlockType = "Product"
	BlockSwitch         BlockType = "Switch"
	BlockSaturation     BlockType = "Saturation"

	// BlockOther tags any type string outside the closed set.
	BlockOther BlockType = "Other"
)

// KnownBlockTypes lists the closed set in a fixed order.
var KnownBlockTypes = []BlockType{
	BlockInport, BlockOutport, BlockGain, BlockSum, BlockIntegrator,
	BlockSubsystem, BlockStateflowChart, BlockModelReference,
	BlockConstant, BlockScope, BlockProduct, BlockSwitch, BlockSaturation,
}

var knownBlockTypes = func() map[string]BlockType {
	m := make(map[string]BlockType, len(KnownBlockTypes))
	for _, t := range KnownBlockTypes {
		m[string(t)] = t
	}
	return m
}()

// ParseBlockType resolves a raw type string against the closed set.
func ParseBlockType(raw string) BlockType {
	if t, ok := knownBlockTypes[raw]; ok {
		return t
	}
	return BlockOther
}

// IsContainer reports whether the type renders as a container (its diagram
// label is decorated with the type name).
func (t BlockType) IsContainer() bool {
	switch t {
	case BlockSubsystem, BlockModelReference, BlockStateflowChart:
		return true
	}
	return false
}
