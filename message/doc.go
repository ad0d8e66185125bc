// Package message pairs a row window over a table with a row window over a
// tensor.Memory to form one inference message.
//
// The two windows are tracked separately because a tensor buffer may carry
// more or fewer rows than the message rows it backs. The id tensor (by
// default "seq_ids") correlates them: column 0 of each tensor row holds the
// table row it was produced from.
//
// Model families such as FIL differ only in the tensor names they expose;
// they are described by a Family value and accessed through Inference.
//
//	msg, err := message.NewInference(message.FIL, meta, 0, -1, mem, 0, -1)
//	if err != nil {
//	    return err
//	}
//	defer msg.Release()
//
//	input, err := msg.Primary()
package message
