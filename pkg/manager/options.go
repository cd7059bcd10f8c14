package manager

// Option is a connection option as configured on the manager. Keys and
// values are passed through uninterpreted.
type Option struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

func cloneOptions(options []Option) []Option {
	if len(options) == 0 {
		return nil
	}
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// toConnectionOptions converts configured pairs into the capability
// representation, keeping order and duplicates.
func toConnectionOptions(options []Option) []ConnectionOption {
	out := make([]ConnectionOption, len(options))
	for i, opt := range options {
		out[i] = ConnectionOption{Key: OptionKey(opt.Key), Value: OptionValue(opt.Value)}
	}
	return out
}
