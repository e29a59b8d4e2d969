// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/registry"
	"github.com/pkg/errors"
)

// Registered names, mirroring TVM's "tvm.autodiff.*" TVM_REGISTER_API table.
const (
	APIJacobian          = "tvm.autodiff.Jacobian"
	APIDerivative        = "tvm.autodiff.Derivative"
	APIDiffBuildingBlock = "tvm.autodiff.DiffBuildingBlock"
	APIDifferentiate     = "tvm.autodiff.Differentiate"
	APIGeneralizedMatMul = "tvm.autodiff.generalized_matmul"
	APIJacobianRecursive = "tvm.autodiff.JacobianRecursive"
)

func init() {
	registry.Register(APIJacobian, func(args ...interface{}) (interface{}, error) {
		output, input, optimize, err := jacobianArgs(args)
		if err != nil {
			return nil, err
		}
		return TensorJacobian(output, input, optimize), nil
	})

	registry.Register(APIDerivative, func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("%s: want (expr, var), got %d args", APIDerivative, len(args))
		}
		expr, ok := args[0].(ir.Expr)
		if !ok {
			return nil, errors.Errorf("%s: argument 0 must be ir.Expr, got %T", APIDerivative, args[0])
		}
		v, ok := args[1].(*ir.Var)
		if !ok {
			return nil, errors.Errorf("%s: argument 1 must be *ir.Var, got %T", APIDerivative, args[1])
		}
		return Derivative(expr, v), nil
	})

	registry.Register(APIDiffBuildingBlock, func(args ...interface{}) (interface{}, error) {
		if len(args) != 3 {
			return nil, errors.Errorf("%s: want (consumer, producer, head), got %d args", APIDiffBuildingBlock, len(args))
		}
		consumer, producer, head, err := threeTensors(APIDiffBuildingBlock, args)
		if err != nil {
			return nil, err
		}
		return DiffBuildingBlock(consumer, producer, head), nil
	})

	registry.Register(APIDifferentiate, func(args ...interface{}) (interface{}, error) {
		if len(args) < 1 {
			return nil, errors.Errorf("%s: want at least (output), got 0 args", APIDifferentiate)
		}
		output, ok := args[0].(*ir.Tensor)
		if !ok {
			return nil, errors.Errorf("%s: argument 0 must be *ir.Tensor, got %T", APIDifferentiate, args[0])
		}
		var inputs []*ir.Tensor
		if len(args) > 1 {
			inputs, ok = args[1].([]*ir.Tensor)
			if !ok {
				return nil, errors.Errorf("%s: argument 1 must be []*ir.Tensor, got %T", APIDifferentiate, args[1])
			}
		}
		var head *ir.Tensor
		if len(args) > 2 && args[2] != nil {
			head, ok = args[2].(*ir.Tensor)
			if !ok {
				return nil, errors.Errorf("%s: argument 2 must be *ir.Tensor, got %T", APIDifferentiate, args[2])
			}
		}
		return Differentiate(output, inputs, head, nil), nil
	})

	registry.Register(APIGeneralizedMatMul, func(args ...interface{}) (interface{}, error) {
		if len(args) != 4 {
			return nil, errors.Errorf("%s: want (A, B, k, name), got %d args", APIGeneralizedMatMul, len(args))
		}
		a, ok := args[0].(*ir.Tensor)
		if !ok {
			return nil, errors.Errorf("%s: argument 0 must be *ir.Tensor, got %T", APIGeneralizedMatMul, args[0])
		}
		b, ok := args[1].(*ir.Tensor)
		if !ok {
			return nil, errors.Errorf("%s: argument 1 must be *ir.Tensor, got %T", APIGeneralizedMatMul, args[1])
		}
		k, ok := args[2].(int)
		if !ok {
			return nil, errors.Errorf("%s: argument 2 must be int, got %T", APIGeneralizedMatMul, args[2])
		}
		name, ok := args[3].(string)
		if !ok {
			return nil, errors.Errorf("%s: argument 3 must be string, got %T", APIGeneralizedMatMul, args[3])
		}
		return GeneralizedMatMul(a, b, k, name), nil
	})

	registry.Register(APIJacobianRecursive, func(args ...interface{}) (interface{}, error) {
		if len(args) < 2 {
			return nil, errors.Errorf("%s: want at least (output, inputs), got %d args", APIJacobianRecursive, len(args))
		}
		output, ok := args[0].(*ir.Tensor)
		if !ok {
			return nil, errors.Errorf("%s: argument 0 must be *ir.Tensor, got %T", APIJacobianRecursive, args[0])
		}
		inputs, ok := args[1].([]*ir.Tensor)
		if !ok {
			return nil, errors.Errorf("%s: argument 1 must be []*ir.Tensor, got %T", APIJacobianRecursive, args[1])
		}
		var head *ir.Tensor
		if len(args) > 2 && args[2] != nil {
			head, ok = args[2].(*ir.Tensor)
			if !ok {
				return nil, errors.Errorf("%s: argument 2 must be *ir.Tensor, got %T", APIJacobianRecursive, args[2])
			}
		}
		return JacobianRecursive(output, inputs, head), nil
	})
}

func jacobianArgs(args []interface{}) (output, input *ir.Tensor, optimize bool, err error) {
	if len(args) < 2 {
		return nil, nil, false, errors.New("want at least (output, input)")
	}
	output, ok := args[0].(*ir.Tensor)
	if !ok {
		return nil, nil, false, errors.Errorf("argument 0 must be *ir.Tensor, got %T", args[0])
	}
	input, ok = args[1].(*ir.Tensor)
	if !ok {
		return nil, nil, false, errors.Errorf("argument 1 must be *ir.Tensor, got %T", args[1])
	}
	optimize = true
	if len(args) > 2 {
		optimize, ok = args[2].(bool)
		if !ok {
			return nil, nil, false, errors.Errorf("argument 2 must be bool, got %T", args[2])
		}
	}
	return output, input, optimize, nil
}

func threeTensors(name string, args []interface{}) (a, b, c *ir.Tensor, err error) {
	a, ok := args[0].(*ir.Tensor)
	if !ok {
		return nil, nil, nil, errors.Errorf("%s: argument 0 must be *ir.Tensor, got %T", name, args[0])
	}
	b, ok = args[1].(*ir.Tensor)
	if !ok {
		return nil, nil, nil, errors.Errorf("%s: argument 1 must be *ir.Tensor, got %T", name, args[1])
	}
	c, ok = args[2].(*ir.Tensor)
	if !ok {
		return nil, nil, nil, errors.Errorf("%s: argument 2 must be *ir.Tensor, got %T", name, args[2])
	}
	return a, b, c, nil
}
